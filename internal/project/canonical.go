package project

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Domain prefix for content-addressed document checksums (CP-4).
// Version suffix enables future algorithm migration.
const DomainDocument = "ffxproj/document/v1"

// MarshalCanonical produces the deterministic JSON used for checksum
// computation. Two documents with equal business fields marshal to
// identical bytes:
//   - struct fields serialize in declaration order, map keys sort
//     lexicographically (encoding/json guarantees)
//   - HTML escaping is disabled (< > & appear literally)
//   - output is NFC normalized at the serialization boundary
//   - volatile save metadata (saved_at, last_saved_by/with, checksum) is
//     zeroed so the checksum covers business state only
func MarshalCanonical(d Document) ([]byte, error) {
	d.SavedAt = ""
	d.LastSavedBy = ""
	d.LastSavedWith = ""
	d.Checksum = ""

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("marshal canonical: %w", err)
	}

	// json.Encoder adds a trailing newline, remove it
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return norm.NFC.Bytes(data), nil
}

// Checksum computes the content-addressed checksum of a document's business
// fields. Stable across save/load round trips given equal business state.
func Checksum(d Document) (string, error) {
	canonical, err := MarshalCanonical(d)
	if err != nil {
		return "", fmt.Errorf("checksum: %w", err)
	}
	return hashWithDomain(DomainDocument, canonical), nil
}

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte separator prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
