// Package pipeline implements the enumerate, expect, sample, classify and
// compare stages over the shared transcript/genome/rates collaborators.
package pipeline

import (
	"github.com/genovo-bio/genovo/internal/classify"
)

// Event is one possible point mutation at a coding-relevant position:
// its genomic position, consequence type, and the context-dependent
// probability of observing it. Probabilities are always finite and in [0,1];
// candidates whose probability is not computable are never materialized.
type Event struct {
	Pos         int // genomic position, 0-based
	Type        classify.MutationType
	Probability float64
}

// TranscriptMutations holds the ordered possible mutations of one transcript.
// The slice follows genomic position order of enumeration, which makes
// re-running the stage byte-identical.
type TranscriptMutations struct {
	Name   string
	Events []Event
}
