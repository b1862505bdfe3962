package rates

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genovo-bio/genovo/internal/genome"
)

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rates.tsv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTable(t, "# trinucleotide model\nACG\tT\t0.25\nACG\tG\t0.5\nTTT\tC\tNaN\n")

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Radius())

	w := genome.Window{Bases: "ACG", Center: 'C'}
	assert.Equal(t, 0.25, table.Lookup(w, 'T'))
	assert.Equal(t, 0.5, table.Lookup(w, 'G'))
	assert.True(t, math.IsNaN(table.Lookup(w, 'A')), "alternate not in table")

	assert.True(t, math.IsNaN(table.Lookup(genome.Window{Bases: "TTT", Center: 'T'}, 'C')),
		"NaN rows stay NaN")
}

func TestLookup_ReverseComplement(t *testing.T) {
	path := writeTable(t, "ACG\tT\t0.25\n")
	table, err := Load(path)
	require.NoError(t, err)

	// CGT is the reverse complement of ACG; mutating its center G to A
	// is the same event as ACG center C to T on the other strand.
	w := genome.Window{Bases: "CGT", Center: 'G'}
	assert.Equal(t, 0.25, table.Lookup(w, 'A'))
	assert.True(t, math.IsNaN(table.Lookup(w, 'C')))
}

func TestLookup_FallbackPastNaNSlot(t *testing.T) {
	// ACG covers this alternate only as NaN, but its reverse complement
	// CGT defines the same event; the defined probability must win.
	path := writeTable(t, "ACG\tT\tNaN\nCGT\tA\t0.3\n")
	table, err := Load(path)
	require.NoError(t, err)

	w := genome.Window{Bases: "ACG", Center: 'C'}
	assert.Equal(t, 0.3, table.Lookup(w, 'T'))

	// an event undefined in both orientations stays NaN
	assert.True(t, math.IsNaN(table.Lookup(w, 'G')))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"even kmer", "ACGT\tT\t0.5\n"},
		{"mixed radius", "ACG\tT\t0.5\nAACGG\tT\t0.5\n"},
		{"bad alt", "ACG\tX\t0.5\n"},
		{"bad probability", "ACG\tT\tlots\n"},
		{"probability above one", "ACG\tT\t1.5\n"},
		{"wrong columns", "ACG\t0.5\n"},
		{"empty", "# nothing here\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeTable(t, tc.content))
			assert.Error(t, err)
		})
	}
}
