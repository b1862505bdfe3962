// Package rates provides the context-dependent mutation-probability table
// (the pattern-partition model). The table is loaded once at startup and is
// read-only afterwards, so concurrent lookups need no locking.
package rates

import (
	"bufio"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/genovo-bio/genovo/internal/genome"
	"github.com/genovo-bio/genovo/internal/textio"
)

// PatternTable maps a k-mer sequence context to per-alternate-base mutation
// probabilities. Contexts absent from the table report NaN, meaning "not
// computable"; partial coverage near contig edges is expected.
type PatternTable struct {
	radius int
	probs  map[string][4]float64 // k-mer -> probability per alternate base
}

// Load reads a pattern-partition file: tab-separated rows of
// k-mer, alternate base, probability, with '#' comment lines.
// All k-mers must share one odd length.
func Load(path string) (*PatternTable, error) {
	r, err := textio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	t := &PatternTable{radius: -1, probs: make(map[string][4]float64)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return nil, textio.Errorf(path, lineNo, "expected 3 columns (kmer, alt, probability), found %d", len(fields))
		}
		kmer := strings.ToUpper(fields[0])
		if len(kmer)%2 == 0 {
			return nil, textio.Errorf(path, lineNo, "k-mer %q has even length", kmer)
		}
		if t.radius == -1 {
			t.radius = len(kmer) / 2
		} else if len(kmer)/2 != t.radius {
			return nil, textio.Errorf(path, lineNo, "k-mer %q does not match table radius %d", kmer, t.radius)
		}
		if len(fields[1]) != 1 {
			return nil, textio.Errorf(path, lineNo, "invalid alternate base %q", fields[1])
		}
		alt := genome.BaseIndex(fields[1][0])
		if alt < 0 {
			return nil, textio.Errorf(path, lineNo, "invalid alternate base %q", fields[1])
		}
		p, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, textio.Errorf(path, lineNo, "invalid probability %q", fields[2])
		}
		if !math.IsNaN(p) && (p < 0 || p > 1) {
			return nil, textio.Errorf(path, lineNo, "probability %v outside [0,1]", p)
		}

		entry, ok := t.probs[kmer]
		if !ok {
			entry = [4]float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()}
		}
		entry[alt] = p
		t.probs[kmer] = entry
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(t.probs) == 0 {
		return nil, fmt.Errorf("%s: empty pattern-partition table", path)
	}
	return t, nil
}

// Radius returns the number of flanking bases on each side of the mutated
// position that the table's contexts cover.
func (t *PatternTable) Radius() int {
	return t.radius
}

// Lookup returns the probability of mutating the center base of the window to
// alt. The model is strand-symmetric: when the forward-strand context has no
// defined probability for this alternate, the reverse-complement context with
// the complemented alternate base is tried. Misses report NaN.
func (t *PatternTable) Lookup(w genome.Window, alt byte) float64 {
	if p, ok := t.lookup(w.Bases, alt); ok && !math.IsNaN(p) {
		return p
	}
	if p, ok := t.lookup(genome.ReverseComplement(w.Bases), genome.Complement(alt)); ok && !math.IsNaN(p) {
		return p
	}
	return math.NaN()
}

func (t *PatternTable) lookup(kmer string, alt byte) (float64, bool) {
	i := genome.BaseIndex(alt)
	if i < 0 {
		return 0, false
	}
	entry, ok := t.probs[kmer]
	if !ok {
		return 0, false
	}
	return entry[i], true
}
