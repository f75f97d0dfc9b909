package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum_IgnoresVolatileSaveMetadata(t *testing.T) {
	doc := newTestDocument(t)

	before, err := Checksum(doc)
	require.NoError(t, err)

	doc.SavedAt = "2026-03-14T16:00:00Z"
	doc.LastSavedBy = "alice"
	doc.LastSavedWith = "0.3.0"
	doc.Checksum = before

	after, err := Checksum(doc)
	require.NoError(t, err)
	assert.Equal(t, before, after, "save metadata must not affect the checksum")
}

func TestChecksum_ChangesWithBusinessState(t *testing.T) {
	doc := newTestDocument(t)

	before, err := Checksum(doc)
	require.NoError(t, err)

	doc = doc.WithBookmark(Bookmark{ID: "bm-1", FilePath: "/a"})

	after, err := Checksum(doc)
	require.NoError(t, err)
	assert.NotEqual(t, before, after, "business mutations must change the checksum")
}

func TestChecksum_DeterministicAcrossCalls(t *testing.T) {
	doc := newTestDocument(t)
	doc = doc.WithHashRecord("/b", HashRecord{Algorithm: "sha256", Value: "bbb"})
	doc = doc.WithHashRecord("/a", HashRecord{Algorithm: "sha256", Value: "aaa"})

	first, err := Checksum(doc)
	require.NoError(t, err)
	second, err := Checksum(doc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64, "sha256 hex digest")
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	doc := newTestDocument(t)
	doc.Name = "a<b>&c"

	data, err := MarshalCanonical(doc)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"a<b>&c"`, "< > & must appear literally")
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	composed := newTestDocument(t)
	composed.Name = "café" // é as a single code point

	decomposed := newTestDocument(t)
	decomposed.Name = "cafe\u0301" // e + combining acute

	a, err := MarshalCanonical(composed)
	require.NoError(t, err)
	b, err := MarshalCanonical(decomposed)
	require.NoError(t, err)

	assert.Equal(t, a, b, "NFC normalization should unify equivalent strings")
}

func TestHashWithDomain_DomainSeparation(t *testing.T) {
	data := []byte("payload")

	a := hashWithDomain("ffxproj/document/v1", data)
	b := hashWithDomain("ffxproj/document/v2", data)

	assert.NotEqual(t, a, b, "different domains must produce different hashes")
}
