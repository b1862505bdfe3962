// Package regions provides the transcript/region data model produced by the
// external transform stage.
package regions

import (
	"fmt"
	"strconv"
	"strings"
)

// Interval is a genomic interval, 0-based and end-exclusive.
type Interval struct {
	Start int
	End   int
}

// NewInterval creates an interval, validating that Start < End.
func NewInterval(start, end int) (Interval, error) {
	if start < 0 || start >= end {
		return Interval{}, fmt.Errorf("invalid interval %d-%d", start, end)
	}
	return Interval{Start: start, End: end}, nil
}

// Contains returns true if pos falls inside the interval.
func (i Interval) Contains(pos int) bool {
	return pos >= i.Start && pos < i.End
}

// Len returns the number of positions covered by the interval.
func (i Interval) Len() int {
	return i.End - i.Start
}

// String formats the interval as "start-end".
func (i Interval) String() string {
	return strconv.Itoa(i.Start) + "-" + strconv.Itoa(i.End)
}

// ParseInterval parses a "start-end" string.
func ParseInterval(s string) (Interval, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return Interval{}, fmt.Errorf("invalid interval %q", s)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return Interval{}, fmt.Errorf("invalid interval start %q: %w", parts[0], err)
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return Interval{}, fmt.Errorf("invalid interval end %q: %w", parts[1], err)
	}
	return NewInterval(start, end)
}

// CDSRegion is a coding interval together with its reading-frame phase.
// Phase is the number of bases at the interval's reading-direction start that
// belong to a codon begun in the previous coding interval.
type CDSRegion struct {
	Interval
	Phase int
}
