package pipeline

import "fmt"

// RefMismatchError reports an observed mutation whose reference base
// disagrees with the genome. This indicates a genome-build mismatch that
// invalidates all downstream statistics, so it aborts the run instead of
// being skipped. Positions are reported 1-based to match the input file.
type RefMismatchError struct {
	Chrom    string
	Pos      int // 0-based internal position
	Expected byte
	Actual   byte
}

func (e *RefMismatchError) Error() string {
	return fmt.Sprintf("reference mismatch at %s:%d: input says %c but genome has %c (wrong genome build?)",
		e.Chrom, e.Pos+1, e.Expected, e.Actual)
}
