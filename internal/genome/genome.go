// Package genome provides base and k-mer context lookups against a reference
// genome. The on-disk genome format is behind the Source interface; the
// pipeline only ever asks for subsequences.
package genome

import "fmt"

// Source serves reference-genome subsequences. Implementations must be safe
// for concurrent reads; the pipeline shares one Source across all workers.
type Source interface {
	// Sequence returns the uppercase bases of chrom[start:end),
	// 0-based and end-exclusive.
	Sequence(chrom string, start, end int) (string, error)
}

// Window is a fixed-size base context centered on a queried position.
type Window struct {
	Bases  string // 2*radius+1 bases, uppercase
	Center byte   // the base at the queried position
}

// Base returns the single base at pos.
func Base(src Source, chrom string, pos int) (byte, error) {
	seq, err := src.Sequence(chrom, pos, pos+1)
	if err != nil {
		return 0, err
	}
	if len(seq) != 1 {
		return 0, fmt.Errorf("expected 1 base at %s:%d, got %d", chrom, pos, len(seq))
	}
	return seq[0], nil
}

// Extract returns the window of radius bases on each side of pos.
func Extract(src Source, chrom string, pos, radius int) (Window, error) {
	seq, err := src.Sequence(chrom, pos-radius, pos+radius+1)
	if err != nil {
		return Window{}, err
	}
	if len(seq) != 2*radius+1 {
		return Window{}, fmt.Errorf("expected %d bases around %s:%d, got %d",
			2*radius+1, chrom, pos, len(seq))
	}
	return Window{Bases: seq, Center: seq[radius]}, nil
}
