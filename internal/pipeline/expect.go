package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/genovo-bio/genovo/internal/classify"
	"github.com/genovo-bio/genovo/internal/textio"
)

// ExpectedMutations holds per-type expected mutation counts for one
// transcript: the sum of probabilities over its possible mutations.
type ExpectedMutations struct {
	Name   string
	Counts classify.ExpectedCounts
}

// neumaierSum is a compensated accumulator. Expected counts sum millions of
// small probabilities, where naive float64 addition loses low-order bits.
type neumaierSum struct {
	sum, c float64
}

func (s *neumaierSum) add(v float64) {
	t := s.sum + v
	if abs(s.sum) >= abs(v) {
		s.c += (s.sum - t) + v
	} else {
		s.c += (v - t) + s.sum
	}
	s.sum = t
}

func (s *neumaierSum) value() float64 {
	return s.sum + s.c
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Expect reduces possible mutations to per-type expected counts.
func Expect(possible []TranscriptMutations) []ExpectedMutations {
	out := make([]ExpectedMutations, 0, len(possible))
	for _, tm := range possible {
		var sums [classify.NumTypes]neumaierSum
		for _, ev := range tm.Events {
			sums[ev.Type].add(ev.Probability)
		}
		em := ExpectedMutations{Name: tm.Name}
		for i := range sums {
			em.Counts[i] = sums[i].value()
		}
		out = append(out, em)
	}
	return out
}

// expectedHeader is the tab-separated header of the expected-mutations file:
// the transcript name column followed by one column per consequence type.
func expectedHeader() string {
	cols := make([]string, 0, classify.NumTypes+1)
	cols = append(cols, "name")
	for _, t := range classify.AllTypes() {
		cols = append(cols, t.String())
	}
	return strings.Join(cols, "\t")
}

// WriteExpected writes expected counts as a TSV with one row per transcript.
func WriteExpected(path string, expected []ExpectedMutations) error {
	w, err := textio.Create(path)
	if err != nil {
		return err
	}
	if err := writeExpectedTo(w, expected); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func writeExpectedTo(w io.Writer, expected []ExpectedMutations) error {
	if _, err := fmt.Fprintln(w, expectedHeader()); err != nil {
		return err
	}
	for _, em := range expected {
		cols := make([]string, 0, classify.NumTypes+1)
		cols = append(cols, em.Name)
		for i := 0; i < classify.NumTypes; i++ {
			cols = append(cols, strconv.FormatFloat(em.Counts[i], 'g', -1, 64))
		}
		if _, err := fmt.Fprintln(w, strings.Join(cols, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// ReadExpected reads an expected-mutations TSV. When filterID is non-empty
// only that transcript's row is returned.
func ReadExpected(path, filterID string) ([]ExpectedMutations, error) {
	r, err := textio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readExpectedFrom(r, path, filterID)
}

func readExpectedFrom(r io.Reader, name, filterID string) ([]ExpectedMutations, error) {
	var result []ExpectedMutations

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		if lineNo == 1 {
			if !strings.HasPrefix(line, "name\t") {
				return nil, textio.Errorf(name, lineNo, "expected header starting with 'name'")
			}
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != classify.NumTypes+1 {
			return nil, textio.Errorf(name, lineNo, "expected %d columns, found %d", classify.NumTypes+1, len(fields))
		}
		if filterID != "" && fields[0] != filterID {
			continue
		}
		em := ExpectedMutations{Name: fields[0]}
		for i := 0; i < classify.NumTypes; i++ {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, textio.Errorf(name, lineNo, "invalid expected count %q", fields[i+1])
			}
			em.Counts[i] = v
		}
		result = append(result, em)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return result, nil
}
