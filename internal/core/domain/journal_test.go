package domain_test

import (
	"testing"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeJournalCode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"vte", "VTE", false},
		{" bnq ", "BNQ", false},
		{"OD1", "OD1", false},
		{"VT", "", true},
		{"VENT", "", true},
		{"v-e", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := domain.NormalizeJournalCode(tt.in)
		if tt.wantErr {
			assert.Errorf(t, err, "input %q", tt.in)
			continue
		}
		require.NoErrorf(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestJournal_FormatEntryNumber(t *testing.T) {
	j := domain.Journal{Code: "VTE"}
	assert.Equal(t, "VTE20250001", j.FormatEntryNumber(2025, 1))
	assert.Equal(t, "VTE20250042", j.FormatEntryNumber(2025, 42))
	assert.Equal(t, "VTE202512345", j.FormatEntryNumber(2025, 12345), "sequence is padded, not truncated")
}

func TestJournal_FormatEntryNumber_CustomTemplate(t *testing.T) {
	j := domain.Journal{Code: "BNQ", NumberFormat: "{YYYY}-{CODE}-{SEQ}"}
	assert.Equal(t, "2025-BNQ-0007", j.FormatEntryNumber(2025, 7))
}

func TestAccountClass(t *testing.T) {
	class, err := domain.AccountClass("411000")
	require.NoError(t, err)
	assert.Equal(t, 4, class)

	_, err = domain.AccountClass("911000")
	assert.Error(t, err)
	_, err = domain.AccountClass("")
	assert.Error(t, err)
}
