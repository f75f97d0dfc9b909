package storage

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaCUE string

var (
	schemaOnce sync.Once
	schemaDef  cue.Value
	schemaErr  error
)

// documentSchema compiles the embedded CUE schema once and returns the
// #Document definition. Compilation failure is a programming error in the
// embedded schema, surfaced on first use.
func documentSchema() (cue.Value, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := schema.Err(); err != nil {
			schemaErr = fmt.Errorf("compile embedded schema: %w", err)
			return
		}
		def := schema.LookupPath(cue.ParsePath("#Document"))
		if !def.Exists() {
			schemaErr = fmt.Errorf("embedded schema has no #Document definition")
			return
		}
		schemaDef = def
	})
	return schemaDef, schemaErr
}

// ValidateDocument checks raw document bytes against the embedded CUE
// schema before they are unmarshaled into Go structs.
//
// Returns a *StorageError with ErrCodeBadJSON for malformed JSON and
// ErrCodeSchema for structural violations; nil when the document is
// loadable. Version-compatibility semantics are NOT applied here; the
// gateway decides whether a valid document of a different version loads.
func ValidateDocument(data []byte) error {
	def, err := documentSchema()
	if err != nil {
		return &StorageError{Code: ErrCodeSchema, Message: err.Error(), Err: err}
	}

	expr, err := cuejson.Extract("document.json", data)
	if err != nil {
		return &StorageError{
			Code:    ErrCodeBadJSON,
			Message: fmt.Sprintf("document is not valid JSON: %v", err),
			Err:     err,
		}
	}

	val := def.Context().BuildExpr(expr)
	if err := val.Err(); err != nil {
		return &StorageError{
			Code:    ErrCodeBadJSON,
			Message: fmt.Sprintf("building document value: %v", err),
			Err:     err,
		}
	}

	unified := def.Unify(val)
	if err := unified.Validate(cue.Final()); err != nil {
		return &StorageError{
			Code:    ErrCodeSchema,
			Message: fmt.Sprintf("document violates schema: %s", cueerrors.Details(err, nil)),
			Err:     err,
		}
	}

	return nil
}
