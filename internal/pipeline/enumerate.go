package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/genovo-bio/genovo/internal/classify"
	"github.com/genovo-bio/genovo/internal/genome"
	"github.com/genovo-bio/genovo/internal/rates"
	"github.com/genovo-bio/genovo/internal/regions"
	"github.com/genovo-bio/genovo/internal/textio"
)

// Enumerator emits every possible point mutation of a transcript together
// with its context-dependent probability and consequence type. It is a pure
// function of transcript, genome and table: re-running it yields identical
// output.
type Enumerator struct {
	Genome genome.Source
	Rates  *rates.PatternTable
	Logger *zap.Logger
}

func (e *Enumerator) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Enumerate walks the transcript's coding-relevant positions in genomic
// order. At each position the three non-reference substitutions are
// considered; a candidate is emitted only when the probability table reports
// a finite value for its context. NaN probabilities mark contexts the model
// does not cover and are silently filtered.
func (e *Enumerator) Enumerate(t *regions.Transcript) ([]Event, error) {
	pc, err := classify.NewPointClassifier(t, e.Genome)
	if err != nil {
		return nil, err
	}

	radius := e.Rates.Radius()
	var events []Event
	for _, iv := range enumerationIntervals(t) {
		for pos := iv.Start; pos < iv.End; pos++ {
			window, err := genome.Extract(e.Genome, t.Chrom, pos, radius)
			if err != nil {
				// The window may be truncated at a contig edge; that only
				// means the context is not computable for this position.
				if _, berr := genome.Base(e.Genome, t.Chrom, pos); berr != nil {
					return nil, fmt.Errorf("sequence context of %s at %s:%d: %w", t.Name, t.Chrom, pos, berr)
				}
				continue
			}
			for i := 0; i < len(genome.Bases); i++ {
				alt := genome.Bases[i]
				if alt == window.Center {
					continue
				}
				p := e.Rates.Lookup(window, alt)
				if math.IsNaN(p) {
					continue
				}
				mutType, err := pc.Classify(pos, window.Center, alt)
				if err != nil {
					return nil, err
				}
				events = append(events, Event{Pos: pos, Type: mutType, Probability: p})
			}
		}
	}
	return events, nil
}

// EnumerateAll enumerates possible mutations for every transcript using a
// worker pool. Transcripts with faulty annotations are skipped with a
// warning; they must not abort the remaining transcripts. When filterID is
// non-empty only that transcript is processed.
func (e *Enumerator) EnumerateAll(transcripts []*regions.Transcript, workers int, filterID string) ([]TranscriptMutations, error) {
	selected := filterTranscripts(transcripts, filterID)

	results := ParallelMap(feed(selected), workers, func(t *regions.Transcript) (TranscriptMutations, error) {
		events, err := e.Enumerate(t)
		return TranscriptMutations{Name: t.Name, Events: events}, err
	})

	out := make([]TranscriptMutations, 0, len(selected))
	err := OrderedCollect(results, func(r WorkResult[TranscriptMutations]) error {
		if r.Err != nil {
			e.logger().Warn("skipping faulty annotation",
				zap.String("transcript", r.Value.Name),
				zap.Error(r.Err))
			return nil
		}
		out = append(out, r.Value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// enumerationIntervals returns the positions a transcript is enumerated
// over, in ascending genomic order: every exonic position plus the splice
// window on the intron side of each junction.
func enumerationIntervals(t *regions.Transcript) []regions.Interval {
	var out []regions.Interval
	for i, exon := range t.Exons {
		if i > 0 {
			out = append(out, regions.Interval{Start: exon.Start - classify.SpliceWindow, End: exon.Start})
		}
		out = append(out, exon)
		if i < len(t.Exons)-1 {
			out = append(out, regions.Interval{Start: exon.End, End: exon.End + classify.SpliceWindow})
		}
	}
	return out
}

func filterTranscripts(transcripts []*regions.Transcript, filterID string) []*regions.Transcript {
	if filterID == "" {
		return transcripts
	}
	var out []*regions.Transcript
	for _, t := range transcripts {
		if t.Name == filterID {
			out = append(out, t)
		}
	}
	return out
}

// WritePossible writes possible mutations in the block format: a "#name"
// line per transcript followed by one "type:probability" line per mutation.
func WritePossible(path string, possible []TranscriptMutations) error {
	w, err := textio.Create(path)
	if err != nil {
		return err
	}
	if err := writePossibleTo(w, possible); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func writePossibleTo(w io.Writer, possible []TranscriptMutations) error {
	for _, tm := range possible {
		if _, err := fmt.Fprintf(w, "#%s\n", tm.Name); err != nil {
			return err
		}
		for _, ev := range tm.Events {
			_, err := fmt.Fprintf(w, "%d:%s\n", ev.Type, strconv.FormatFloat(ev.Probability, 'g', -1, 64))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadPossible reads a possible-mutations file. Event positions are not part
// of the on-disk format and are left zero.
func ReadPossible(path, filterID string) ([]TranscriptMutations, error) {
	r, err := textio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readPossibleFrom(r, path, filterID)
}

func readPossibleFrom(r io.Reader, name, filterID string) ([]TranscriptMutations, error) {
	var result []TranscriptMutations
	current := -1

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			transcript := line[1:]
			if filterID != "" && transcript != filterID {
				current = -1
				continue
			}
			result = append(result, TranscriptMutations{Name: transcript})
			current = len(result) - 1
			continue
		}
		if current == -1 {
			if filterID != "" {
				continue
			}
			return nil, textio.Errorf(name, lineNo, "expected #name line before mutation entries")
		}
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			return nil, textio.Errorf(name, lineNo, "expected type:probability, found %q", line)
		}
		code, err := strconv.ParseUint(line[:colon], 10, 8)
		if err != nil {
			return nil, textio.Errorf(name, lineNo, "invalid mutation type %q", line[:colon])
		}
		mutType, err := classify.FromCode(uint8(code))
		if err != nil {
			return nil, textio.Errorf(name, lineNo, "%v", err)
		}
		p, err := strconv.ParseFloat(line[colon+1:], 64)
		if err != nil {
			return nil, textio.Errorf(name, lineNo, "invalid probability %q", line[colon+1:])
		}
		result[current].Events = append(result[current].Events, Event{Type: mutType, Probability: p})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return result, nil
}
