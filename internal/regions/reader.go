package regions

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/genovo-bio/genovo/internal/textio"
)

// Columns of the genomic-regions file written by the transform stage:
// name, chromosome, strand, span, exons, coding intervals, phases.
// Interval lists are ";"-joined "start-end" pairs.
const regionsColumns = 7

// ReadFile reads a genomic-regions file. When filterID is non-empty, only the
// transcript with that name is returned. Paths ending in ".duckdb" or ".db"
// are routed to the DuckDB-backed store instead.
func ReadFile(path, filterID string) ([]*Transcript, error) {
	if IsStorePath(path) {
		store, err := OpenStore(path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load(filterID)
	}

	r, err := textio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return Read(r, path, filterID)
}

// Read parses genomic-regions rows from r. The name argument is used for
// error reporting only.
func Read(r io.Reader, name, filterID string) ([]*Transcript, error) {
	var result []*Transcript

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		t, err := parseTranscriptLine(line)
		if err != nil {
			return nil, textio.Errorf(name, lineNo, "%v", err)
		}
		if filterID != "" && t.Name != filterID {
			continue
		}
		result = append(result, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return result, nil
}

func parseTranscriptLine(line string) (*Transcript, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != regionsColumns {
		return nil, fmt.Errorf("expected %d tab-delimited columns, found %d", regionsColumns, len(fields))
	}

	strand, err := parseStrand(fields[2])
	if err != nil {
		return nil, err
	}
	span, err := ParseInterval(fields[3])
	if err != nil {
		return nil, fmt.Errorf("transcript span: %w", err)
	}
	exons, err := parseIntervalList(fields[4])
	if err != nil {
		return nil, fmt.Errorf("exons: %w", err)
	}
	cds, err := parseCDSList(fields[5], fields[6])
	if err != nil {
		return nil, err
	}

	return &Transcript{
		Name:   fields[0],
		Chrom:  fields[1],
		Strand: strand,
		Span:   span,
		Exons:  exons,
		CDS:    cds,
	}, nil
}

func parseStrand(s string) (int8, error) {
	switch s {
	case "+":
		return StrandForward, nil
	case "-":
		return StrandReverse, nil
	}
	return 0, fmt.Errorf("invalid strand %q", s)
}

func parseIntervalList(s string) ([]Interval, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ";")
	out := make([]Interval, 0, len(parts))
	for _, p := range parts {
		iv, err := ParseInterval(p)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, nil
}

func parseCDSList(intervals, phases string) ([]CDSRegion, error) {
	ivs, err := parseIntervalList(intervals)
	if err != nil {
		return nil, fmt.Errorf("coding intervals: %w", err)
	}
	if len(ivs) == 0 {
		return nil, nil
	}
	phaseParts := strings.Split(phases, ";")
	if len(phaseParts) != len(ivs) {
		return nil, fmt.Errorf("%d coding intervals but %d phases", len(ivs), len(phaseParts))
	}
	out := make([]CDSRegion, len(ivs))
	for i, iv := range ivs {
		phase, err := strconv.Atoi(phaseParts[i])
		if err != nil || phase < 0 || phase > 2 {
			return nil, fmt.Errorf("invalid phase %q", phaseParts[i])
		}
		out[i] = CDSRegion{Interval: iv, Phase: phase}
	}
	return out, nil
}

// WriteFile writes transcripts in the genomic-regions format.
func WriteFile(path string, transcripts []*Transcript) error {
	w, err := textio.Create(path)
	if err != nil {
		return err
	}
	if err := Write(w, transcripts); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Write writes genomic-regions rows to w.
func Write(w io.Writer, transcripts []*Transcript) error {
	for _, t := range transcripts {
		var exons, cds, phases strings.Builder
		for i, e := range t.Exons {
			if i > 0 {
				exons.WriteByte(';')
			}
			exons.WriteString(e.String())
		}
		for i, c := range t.CDS {
			if i > 0 {
				cds.WriteByte(';')
				phases.WriteByte(';')
			}
			cds.WriteString(c.Interval.String())
			phases.WriteString(strconv.Itoa(c.Phase))
		}
		strand := "+"
		if t.IsReverseStrand() {
			strand = "-"
		}
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Name, t.Chrom, strand, t.Span, exons.String(), cds.String(), phases.String())
		if err != nil {
			return err
		}
	}
	return nil
}
