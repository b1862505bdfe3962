package genome

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/genovo-bio/genovo/internal/textio"
)

// FASTA is an in-memory Source backed by a FASTA file. Whole chromosomes are
// held as strings so lookups in the hot path never touch the disk.
type FASTA struct {
	sequences map[string]string // chromosome -> uppercase sequence
}

// LoadFASTA reads a (possibly gzipped) FASTA file into memory.
func LoadFASTA(path string) (*FASTA, error) {
	r, err := textio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	f, err := ParseFASTA(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// ParseFASTA parses FASTA content from r. The chromosome name is the first
// whitespace-delimited token of each header line.
func ParseFASTA(r io.Reader) (*FASTA, error) {
	f := &FASTA{sequences: make(map[string]string)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var current string
	var seq strings.Builder
	flush := func() {
		if current != "" {
			f.sequences[current] = strings.ToUpper(seq.String())
		}
		seq.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			header := strings.TrimPrefix(line, ">")
			if idx := strings.IndexAny(header, " \t"); idx != -1 {
				header = header[:idx]
			}
			current = header
			continue
		}
		seq.WriteString(strings.TrimSpace(line))
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(f.sequences) == 0 {
		return nil, fmt.Errorf("no sequences found")
	}
	return f, nil
}

// NewFromMap builds a Source from chromosome sequences. Intended for tests.
func NewFromMap(sequences map[string]string) *FASTA {
	upper := make(map[string]string, len(sequences))
	for chrom, seq := range sequences {
		upper[chrom] = strings.ToUpper(seq)
	}
	return &FASTA{sequences: upper}
}

// Sequence implements Source.
func (f *FASTA) Sequence(chrom string, start, end int) (string, error) {
	seq, ok := f.sequences[chrom]
	if !ok {
		return "", fmt.Errorf("unknown chromosome %q", chrom)
	}
	if start < 0 || end > len(seq) || start > end {
		return "", fmt.Errorf("range %d-%d out of bounds for %s (length %d)",
			start, end, chrom, len(seq))
	}
	return seq[start:end], nil
}

// ChromLen returns the length of a chromosome, or 0 if unknown.
func (f *FASTA) ChromLen(chrom string) int {
	return len(f.sequences[chrom])
}
