package storage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalDocument(t *testing.T, mutate func(m map[string]any)) []byte {
	t.Helper()

	doc := testDocument(t, "/case/001")
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	if mutate == nil {
		return data
	}

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	mutate(m)
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return out
}

func TestValidateDocument_AcceptsFreshDocument(t *testing.T) {
	data := marshalDocument(t, nil)

	assert.NoError(t, ValidateDocument(data))
}

func TestValidateDocument_RejectsMalformedJSON(t *testing.T) {
	err := ValidateDocument([]byte(`{"version": 2,`))

	require.Error(t, err)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeBadJSON, se.Code)
}

func TestValidateDocument_RejectsMissingVersion(t *testing.T) {
	data := marshalDocument(t, func(m map[string]any) {
		delete(m, "version")
	})

	err := ValidateDocument(data)

	assert.True(t, IsSchemaError(err), "missing version should fail the schema, got %v", err)
}

func TestValidateDocument_RejectsEmptyID(t *testing.T) {
	data := marshalDocument(t, func(m map[string]any) {
		m["id"] = ""
	})

	err := ValidateDocument(data)

	assert.True(t, IsSchemaError(err), "empty id should fail the schema, got %v", err)
}

func TestValidateDocument_RejectsBadCategory(t *testing.T) {
	data := marshalDocument(t, func(m map[string]any) {
		entries := m["activity_log"].([]any)
		entry := entries[0].(map[string]any)
		entry["category"] = "bogus"
	})

	err := ValidateDocument(data)

	assert.True(t, IsSchemaError(err), "unknown category should fail the schema, got %v", err)
}

func TestValidateDocument_RejectsBadIntegrityStatus(t *testing.T) {
	data := marshalDocument(t, func(m map[string]any) {
		pd := m["processed_databases"].(map[string]any)
		pd["integrity"] = map[string]any{
			"/db": map[string]any{
				"file_size":     float64(10),
				"baseline_hash": "aaa",
				"baseline_at":   "2026-03-14T15:09:26Z",
				"status":        "corrupt",
			},
		}
	})

	err := ValidateDocument(data)

	assert.True(t, IsSchemaError(err), "unknown status should fail the schema, got %v", err)
}

func TestValidateDocument_ToleratesUnknownFields(t *testing.T) {
	// Documents written by newer tool versions may carry extra fields; the
	// schema is open and must accept them.
	data := marshalDocument(t, func(m map[string]any) {
		m["future_field"] = map[string]any{"anything": true}
	})

	assert.NoError(t, ValidateDocument(data))
}

func TestValidateDocument_ToleratesMissingOptionalSections(t *testing.T) {
	// A minimal older-version document: only the required identity fields.
	minimal := []byte(`{
		"version": 1,
		"id": "doc-1",
		"name": "001",
		"root_path": "/case/001",
		"created_at": "2025-01-01T00:00:00Z"
	}`)

	assert.NoError(t, ValidateDocument(minimal))
}
