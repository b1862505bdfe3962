package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genovo-bio/genovo/internal/classify"
	"github.com/genovo-bio/genovo/internal/rates"
	"github.com/genovo-bio/genovo/internal/regions"
)

func loadTestTable(t *testing.T, content string) *rates.PatternTable {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rates.tsv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	table, err := rates.Load(path)
	require.NoError(t, err)
	return table
}

func TestEnumerate(t *testing.T) {
	// Only the GGG context is covered; its reverse complement CCC is
	// matched through the strand-symmetric lookup. The NaN row must not
	// produce an event.
	table := loadTestTable(t, "GGG\tA\t0.1\nGGG\tT\tNaN\n")

	enum := &Enumerator{Genome: createTestGenome(), Rates: table}
	events, err := enum.Enumerate(createForwardTranscript())
	require.NoError(t, err)

	want := []Event{
		{Pos: 6, Type: classify.Unknown, Probability: 0.1},  // 5' UTR, via CCC
		{Pos: 11, Type: classify.Missense, Probability: 0.1}, // GGT -> AGT
		{Pos: 30, Type: classify.Unknown, Probability: 0.1},  // 3' UTR
		{Pos: 31, Type: classify.Unknown, Probability: 0.1},
		{Pos: 32, Type: classify.Unknown, Probability: 0.1},
		{Pos: 33, Type: classify.Unknown, Probability: 0.1},
		// position 34 is skipped: its window is truncated at the contig edge
	}
	assert.Equal(t, want, events)
}

func TestEnumerate_PhaseShiftedCodingStart(t *testing.T) {
	// The CAT context covers the start codon's first base; its reverse
	// complement ATG covers the second. Both candidates classify against
	// the ATG that begins one base into the coding interval.
	table := loadTestTable(t, "CAT\tG\t0.2\n")

	enum := &Enumerator{Genome: createTestGenome(), Rates: table}
	events, err := enum.Enumerate(createPhaseShiftTranscript())
	require.NoError(t, err)

	want := []Event{
		{Pos: 3, Type: classify.StartLoss, Probability: 0.2}, // ATG -> GTG
		{Pos: 4, Type: classify.Missense, Probability: 0.2},  // ATG -> ACG
	}
	assert.Equal(t, want, events)
}

func TestEnumerate_Deterministic(t *testing.T) {
	table := loadTestTable(t, "GGG\tA\t0.1\nTGG\tC\t0.02\n")
	enum := &Enumerator{Genome: createTestGenome(), Rates: table}

	first, err := enum.Enumerate(createForwardTranscript())
	require.NoError(t, err)
	second, err := enum.Enumerate(createForwardTranscript())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEnumerateAll_SkipsFaultyTranscript(t *testing.T) {
	table := loadTestTable(t, "GGG\tA\t0.1\n")
	enum := &Enumerator{Genome: createTestGenome(), Rates: table}

	good := createForwardTranscript()
	bad := createForwardTranscript()
	bad.Name = "TBAD"
	bad.Chrom = "chrMissing"

	possible, err := enum.EnumerateAll([]*regions.Transcript{bad, good}, 2, "")
	require.NoError(t, err)
	require.Len(t, possible, 1, "transcript on a missing chromosome is skipped")
	assert.Equal(t, "TF1", possible[0].Name)
	assert.NotEmpty(t, possible[0].Events)
}

func TestEnumerateAll_Filter(t *testing.T) {
	table := loadTestTable(t, "GGG\tA\t0.1\n")
	enum := &Enumerator{Genome: createTestGenome(), Rates: table}

	other := createForwardTranscript()
	other.Name = "TF2"

	possible, err := enum.EnumerateAll([]*regions.Transcript{createForwardTranscript(), other}, 0, "TF2")
	require.NoError(t, err)
	require.Len(t, possible, 1)
	assert.Equal(t, "TF2", possible[0].Name)
}

func TestPossibleRoundTrip(t *testing.T) {
	possible := []TranscriptMutations{
		{Name: "TF1", Events: []Event{
			{Type: classify.Missense, Probability: 0.1},
			{Type: classify.Synonymous, Probability: 3.5e-7},
		}},
		{Name: "TF2", Events: nil},
		{Name: "TF3", Events: []Event{
			{Type: classify.SpliceSite, Probability: 1},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, writePossibleTo(&buf, possible))

	assert.Equal(t, "#TF1\n2:0.1\n1:3.5e-07\n#TF2\n#TF3\n6:1\n", buf.String())

	reread, err := readPossibleFrom(strings.NewReader(buf.String()), "possible.txt", "")
	require.NoError(t, err)
	assert.Equal(t, possible, reread)
}

func TestReadPossible_Filter(t *testing.T) {
	input := "#TF1\n2:0.1\n#TF2\n3:0.2\n"
	result, err := readPossibleFrom(strings.NewReader(input), "possible.txt", "TF2")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "TF2", result[0].Name)
	assert.Equal(t, []Event{{Type: classify.Nonsense, Probability: 0.2}}, result[0].Events)
}

func TestReadPossible_Errors(t *testing.T) {
	for _, bad := range []string{
		"2:0.1\n",      // entry before any #name
		"#TF1\n2;0.1\n", // wrong separator
		"#TF1\n9:0.1\n", // invalid type code
		"#TF1\n2:x\n",   // invalid probability
	} {
		_, err := readPossibleFrom(strings.NewReader(bad), "possible.txt", "")
		assert.Error(t, err, "input %q", bad)
	}
}
