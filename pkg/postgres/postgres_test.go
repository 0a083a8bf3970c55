package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingMigrations(t *testing.T) {
	tests := []struct {
		name     string
		applied  []string
		expected []string
	}{
		{"fresh database", nil, []string{"001_catalog.sql", "002_solve_run.sql"}},
		{"partially migrated", []string{"001_catalog.sql"}, []string{"002_solve_run.sql"}},
		{"up to date", []string{"002_solve_run.sql", "001_catalog.sql"}, nil},
		{"unknown applied migration is ignored", []string{"000_legacy.sql"}, []string{"001_catalog.sql", "002_solve_run.sql"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pending, err := pendingMigrations(tt.applied)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, pending)
		})
	}
}

func TestKeysRoundTrip(t *testing.T) {
	keys := keysFromInt64([]int64{10, 21, 30001})
	assert.Equal(t, []int64{10, 21, 30001}, keysToInt64(keys))
	assert.Empty(t, keysToInt64(nil))
}
