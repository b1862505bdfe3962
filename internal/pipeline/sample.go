package pipeline

import (
	"bufio"
	"fmt"
	"hash/fnv"
	"io"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/genovo-bio/genovo/internal/classify"
	"github.com/genovo-bio/genovo/internal/textio"
)

// SampledMutations holds the null distribution of one transcript: per
// consequence type, a histogram over the number of mutations seen in each
// random realization. Types with no possible mutation carry a nil histogram
// and serialize as an empty column.
type SampledMutations struct {
	Name string
	Dist [classify.NumTypes]*Counter
}

// Sampler draws random realizations of the per-transcript mutation model.
// Each possible mutation is an independent Bernoulli trial with its own
// probability. Every transcript gets its own deterministic random stream
// derived from Seed and the transcript name, so results are reproducible
// and independent of worker count and transcript order.
type Sampler struct {
	N      int // realizations per transcript
	Seed   uint64
	Logger *zap.Logger
}

func (s *Sampler) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Sample draws N realizations for one transcript. Mutations of unknown type
// carry no signal for the significance test and are excluded.
func (s *Sampler) Sample(tm TranscriptMutations) SampledMutations {
	sm := SampledMutations{Name: tm.Name}

	events := make([]Event, 0, len(tm.Events))
	for _, ev := range tm.Events {
		if ev.Type == classify.Unknown {
			continue
		}
		events = append(events, ev)
		if sm.Dist[ev.Type] == nil {
			sm.Dist[ev.Type] = &Counter{}
		}
	}

	src := rand.NewPCG(s.Seed, hashName(tm.Name))
	for i := 0; i < s.N; i++ {
		var hits [classify.NumTypes]int
		for _, ev := range events {
			b := distuv.Bernoulli{P: ev.Probability, Src: src}
			if b.Rand() == 1 {
				hits[ev.Type]++
			}
		}
		for t := range sm.Dist {
			if sm.Dist[t] != nil {
				sm.Dist[t].Inc(hits[t])
			}
		}
	}
	return sm
}

// SampleAll samples every transcript using a worker pool. When filterID is
// non-empty only that transcript is sampled.
func (s *Sampler) SampleAll(possible []TranscriptMutations, workers int, filterID string) ([]SampledMutations, error) {
	selected := possible
	if filterID != "" {
		selected = nil
		for _, tm := range possible {
			if tm.Name == filterID {
				selected = append(selected, tm)
			}
		}
	}

	s.logger().Info("sampling null distributions",
		zap.Int("transcripts", len(selected)),
		zap.Int("realizations", s.N),
		zap.Uint64("seed", s.Seed))

	results := ParallelMap(feed(selected), workers, func(tm TranscriptMutations) (SampledMutations, error) {
		return s.Sample(tm), nil
	})

	out := make([]SampledMutations, 0, len(selected))
	err := OrderedCollect(results, func(r WorkResult[SampledMutations]) error {
		if r.Err != nil {
			return r.Err
		}
		out = append(out, r.Value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// hashName maps a transcript name to a stable 64-bit stream identifier.
func hashName(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return h.Sum64()
}

// WriteSampled writes null distributions as a TSV with one row per
// transcript and one "|"-joined histogram per consequence type.
func WriteSampled(path string, sampled []SampledMutations) error {
	w, err := textio.Create(path)
	if err != nil {
		return err
	}
	if err := writeSampledTo(w, sampled); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func writeSampledTo(w io.Writer, sampled []SampledMutations) error {
	if _, err := fmt.Fprintln(w, expectedHeader()); err != nil {
		return err
	}
	for _, sm := range sampled {
		cols := make([]string, 0, classify.NumTypes+1)
		cols = append(cols, sm.Name)
		for _, c := range sm.Dist {
			if c == nil {
				cols = append(cols, "")
			} else {
				cols = append(cols, c.String())
			}
		}
		if _, err := fmt.Fprintln(w, strings.Join(cols, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// ReadSampled reads a sampled-mutations TSV. When filterID is non-empty only
// that transcript's row is returned.
func ReadSampled(path, filterID string) ([]SampledMutations, error) {
	r, err := textio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readSampledFrom(r, path, filterID)
}

func readSampledFrom(r io.Reader, name, filterID string) ([]SampledMutations, error) {
	var result []SampledMutations

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
		sm := SampledMutations{Name: fields[0]}
		for i := 0; i < classify.NumTypes; i++ {
			if fields[i+1] == "" {
				continue
			}
			c, err := ParseCounter(fields[i+1])
			if err != nil {
				return nil, textio.Errorf(name, lineNo, "%v", err)
			}
			sm.Dist[i] = c
		}
		result = append(result, sm)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return result, nil
}
