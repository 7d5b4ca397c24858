package domain_test

import (
	"testing"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDocumentHash_Deterministic(t *testing.T) {
	content := map[string]any{"number": "FA-2025-001", "total": "120.00"}

	h1, err := domain.ComputeDocumentHash(content)
	require.NoError(t, err)
	h2, err := domain.ComputeDocumentHash(content)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "hex-encoded SHA-256")
}

func TestComputeDocumentHash_StructAndMapAgree(t *testing.T) {
	type invoice struct {
		Number string `json:"number"`
		Total  string `json:"total"`
	}
	// Struct field order differs from map key order; canonicalization must
	// make both hash identically.
	fromStruct, err := domain.ComputeDocumentHash(invoice{Number: "FA-1", Total: "10.00"})
	require.NoError(t, err)
	fromMap, err := domain.ComputeDocumentHash(map[string]any{"total": "10.00", "number": "FA-1"})
	require.NoError(t, err)

	assert.Equal(t, fromStruct, fromMap)
}

func TestComputeDocumentHash_DetectsContentChange(t *testing.T) {
	h1, err := domain.ComputeDocumentHash(map[string]any{"total": "120.00"})
	require.NoError(t, err)
	h2, err := domain.ComputeDocumentHash(map[string]any{"total": "120.01"})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestIntegrityRecord_ComputeSignature(t *testing.T) {
	rec := domain.IntegrityRecord{
		ChainScope:   domain.DefaultChainScope,
		DocumentType: "invoice",
		DocumentID:   "doc-1",
		DocumentHash: "abc",
		PreviousHash: "",
	}
	sig := rec.ComputeSignature()
	assert.Len(t, sig, 64)
	assert.Equal(t, sig, rec.ComputeSignature())

	rec.PreviousHash = "def"
	assert.NotEqual(t, sig, rec.ComputeSignature(), "signature binds the predecessor")
}
