package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genovo-bio/genovo/internal/classify"
	"github.com/genovo-bio/genovo/internal/regions"
)

func TestReadObserved(t *testing.T) {
	input := `# cohort calls, 1-based positions
chr1	12	G	A
chr1 14 t c
chr9	100	A	T
`
	observed, err := readObservedFrom(strings.NewReader(input), "observed.txt")
	require.NoError(t, err)
	require.Len(t, observed, 3)

	assert.Equal(t, Observed{Chrom: "chr1", Pos: 11, Ref: 'G', Alt: 'A'}, observed[0])
	assert.Equal(t, Observed{Chrom: "chr1", Pos: 13, Ref: 'T', Alt: 'C'}, observed[1],
		"whitespace-separated and case-insensitive")
	assert.Equal(t, Observed{Chrom: "chr9", Pos: 99, Ref: 'A', Alt: 'T'}, observed[2])
}

func TestReadObserved_Errors(t *testing.T) {
	for _, bad := range []string{
		"chr1\t12\tG\n",          // missing alt
		"chr1\t0\tG\tA\n",        // positions are 1-based
		"chr1\ttwelve\tG\tA\n",   // non-numeric position
		"chr1\t12\tN\tA\n",       // ambiguous base
		"chr1\t12\tGG\tA\n",      // not a point mutation
		"chr1\t12\tG\tG\n",       // ref equals alt
	} {
		_, err := readObservedFrom(strings.NewReader(bad), "observed.txt")
		assert.Error(t, err, "input %q", bad)
	}
}

func TestClassifyAll(t *testing.T) {
	transcripts := []*regions.Transcript{createForwardTranscript()}
	c := NewClassifier(transcripts, createTestGenome(), nil)

	observed := []Observed{
		{Chrom: "chr1", Pos: 11, Ref: 'G', Alt: 'A'},  // GGT -> AGT
		{Chrom: "chr1", Pos: 16, Ref: 'G', Alt: 'A'},  // splice donor
		{Chrom: "chr1", Pos: 2, Ref: 'A', Alt: 'T'},   // outside the span
	}

	classified, err := c.ClassifyAll(observed)
	require.NoError(t, err)
	require.Len(t, classified, 2, "the mutation outside every region is dropped")

	assert.Equal(t, "TF1", classified[0].Region)
	assert.Equal(t, classify.Missense, classified[0].Type)
	assert.Equal(t, 11, classified[0].Pos)
	assert.Equal(t, classify.SpliceSite, classified[1].Type)
}

func TestClassifyAll_RefMismatchAborts(t *testing.T) {
	c := NewClassifier([]*regions.Transcript{createForwardTranscript()}, createTestGenome(), nil)

	// position 11 holds G, not C; the cohort was called on another build
	_, err := c.ClassifyAll([]Observed{{Chrom: "chr1", Pos: 11, Ref: 'C', Alt: 'A'}})
	require.Error(t, err)

	var mismatch *RefMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "chr1", mismatch.Chrom)
	assert.Equal(t, 11, mismatch.Pos)
	assert.Contains(t, mismatch.Error(), "chr1:12", "reported 1-based")
}

func TestClassifyAll_OverlappingRegions(t *testing.T) {
	a := createForwardTranscript()
	b := createForwardTranscript()
	b.Name = "TF2"
	c := NewClassifier([]*regions.Transcript{a, b}, createTestGenome(), nil)

	classified, err := c.ClassifyAll([]Observed{{Chrom: "chr1", Pos: 11, Ref: 'G', Alt: 'A'}})
	require.NoError(t, err)
	require.Len(t, classified, 2, "one row per overlapping region")
	assert.Equal(t, "TF1", classified[0].Region)
	assert.Equal(t, "TF2", classified[1].Region)
}

func TestClassifiedRoundTrip(t *testing.T) {
	classified := []ClassifiedMutation{
		{Observed: Observed{Chrom: "chr1", Pos: 11, Ref: 'G', Alt: 'A'}, Region: "TF1", Type: classify.Missense},
		{Observed: Observed{Chrom: "chr1", Pos: 16, Ref: 'G', Alt: 'A'}, Region: "TF1", Type: classify.SpliceSite},
	}

	var buf bytes.Buffer
	require.NoError(t, writeClassifiedTo(&buf, classified))
	assert.Equal(t, "chr1\t12\tG\tA\tTF1\t2\nchr1\t17\tG\tA\tTF1\t6\n", buf.String())

	reread, err := readClassifiedFrom(strings.NewReader(buf.String()), "classified.tsv")
	require.NoError(t, err)
	assert.Equal(t, classified, reread)
}
