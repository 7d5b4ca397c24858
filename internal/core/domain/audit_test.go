package domain_test

import (
	"testing"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffChangedFields(t *testing.T) {
	oldValues := map[string]any{
		"label":  "Facture 42",
		"status": "DRAFT",
		"total":  "120.00",
	}
	newValues := map[string]any{
		"label":   "Facture 42",
		"status":  "VALIDATED",
		"comment": "relance",
	}

	fields := domain.DiffChangedFields(oldValues, newValues)
	assert.Equal(t, []string{"comment", "status", "total"}, fields)
}

func TestDiffChangedFields_NumericRepresentations(t *testing.T) {
	// jsonb round-trips turn ints into float64; same value must not diff.
	fields := domain.DiffChangedFields(
		map[string]any{"count": 3},
		map[string]any{"count": float64(3)},
	)
	assert.Empty(t, fields)
}

func TestAuditAction_RequiresJustification(t *testing.T) {
	assert.True(t, domain.ActionDelete.RequiresJustification())
	assert.True(t, domain.ActionAdminUpdate.RequiresJustification())
	assert.True(t, domain.ActionBulkUpdate.RequiresJustification())
	assert.False(t, domain.ActionCreate.RequiresJustification())
	assert.False(t, domain.ActionUpdate.RequiresJustification())
	assert.False(t, domain.ActionView.RequiresJustification())
}

func TestAuditRecord_ComputeHash_Chains(t *testing.T) {
	now := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	rec := domain.AuditRecord{
		EntityType:   "entry",
		EntityID:     "e-1",
		Action:       domain.ActionCreate,
		UserID:       "u-1",
		PreviousHash: "",
		CreatedAt:    now,
	}

	h1, err := rec.ComputeHash()
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	// Same content, different predecessor: hash must change.
	rec.PreviousHash = h1
	h2, err := rec.ComputeHash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestAuditRecord_ComputeHash_SurvivesTimestampRoundTrip(t *testing.T) {
	// timestamptz columns keep microseconds; a record hashed with a
	// nanosecond clock must recompute identically after reload.
	created := time.Date(2025, 4, 1, 10, 0, 0, 123456789, time.UTC)
	rec := domain.AuditRecord{
		EntityType: "entry",
		EntityID:   "e-1",
		Action:     domain.ActionCreate,
		UserID:     "u-1",
		CreatedAt:  created,
	}

	sealed, err := rec.ComputeHash()
	require.NoError(t, err)

	reloaded := rec
	reloaded.CreatedAt = created.Truncate(time.Microsecond)
	recomputed, err := reloaded.ComputeHash()
	require.NoError(t, err)
	assert.Equal(t, sealed, recomputed)
}
