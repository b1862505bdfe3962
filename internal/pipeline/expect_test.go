package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genovo-bio/genovo/internal/classify"
)

func TestExpect(t *testing.T) {
	possible := []TranscriptMutations{
		{Name: "TF1", Events: []Event{
			{Type: classify.Missense, Probability: 0.1},
			{Type: classify.Missense, Probability: 0.2},
			{Type: classify.Nonsense, Probability: 0.25},
			{Type: classify.Unknown, Probability: 0.5},
		}},
		{Name: "TF2"},
	}

	expected := Expect(possible)
	require.Len(t, expected, 2)

	tf1 := expected[0]
	assert.Equal(t, "TF1", tf1.Name)
	assert.InDelta(t, 0.3, tf1.Counts.Get(classify.Missense), 1e-12)
	assert.InDelta(t, 0.25, tf1.Counts.Get(classify.Nonsense), 1e-12)
	assert.InDelta(t, 0.5, tf1.Counts.Get(classify.Unknown), 1e-12)
	assert.Zero(t, tf1.Counts.Get(classify.Synonymous))

	assert.Equal(t, "TF2", expected[1].Name)
	assert.Zero(t, expected[1].Counts.Get(classify.Missense))
}

func TestNeumaierSum_SmallTerms(t *testing.T) {
	// one million tiny probabilities on top of a large term
	var s neumaierSum
	s.add(1.0)
	for i := 0; i < 1_000_000; i++ {
		s.add(1e-16)
	}
	assert.InDelta(t, 1.0+1e-10, s.value(), 1e-14)
}

func TestExpectedRoundTrip(t *testing.T) {
	expected := Expect([]TranscriptMutations{
		{Name: "TF1", Events: []Event{
			{Type: classify.Missense, Probability: 0.125},
			{Type: classify.SpliceSite, Probability: 0.5},
		}},
		{Name: "TF2"},
	})

	var buf bytes.Buffer
	require.NoError(t, writeExpectedTo(&buf, expected))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t,
		"name\tunknown\tsynonymous\tmissense\tnonsense\tstop_loss\tstart_loss\tsplice_site",
		lines[0])
	assert.Equal(t, "TF1\t0\t0\t0.125\t0\t0\t0\t0.5", lines[1])

	reread, err := readExpectedFrom(strings.NewReader(buf.String()), "expected.tsv", "")
	require.NoError(t, err)
	assert.Equal(t, expected, reread)
}

func TestReadExpected_Filter(t *testing.T) {
	input := "name\tunknown\tsynonymous\tmissense\tnonsense\tstop_loss\tstart_loss\tsplice_site\n" +
		"TF1\t0\t0\t0.125\t0\t0\t0\t0\n" +
		"TF2\t0\t0\t0.25\t0\t0\t0\t0\n"
	result, err := readExpectedFrom(strings.NewReader(input), "expected.tsv", "TF2")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "TF2", result[0].Name)
	assert.Equal(t, 0.25, result[0].Counts.Get(classify.Missense))
}

func TestReadExpected_Errors(t *testing.T) {
	for _, bad := range []string{
		"wrong\theader\n",
		"name\tunknown\tsynonymous\tmissense\tnonsense\tstop_loss\tstart_loss\tsplice_site\nTF1\t0\t0\n",
		"name\tunknown\tsynonymous\tmissense\tnonsense\tstop_loss\tstart_loss\tsplice_site\nTF1\tx\t0\t0\t0\t0\t0\t0\n",
	} {
		_, err := readExpectedFrom(strings.NewReader(bad), "expected.tsv", "")
		assert.Error(t, err)
	}
}
