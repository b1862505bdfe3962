package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/genovo-bio/genovo/internal/classify"
	"github.com/genovo-bio/genovo/internal/genome"
	"github.com/genovo-bio/genovo/internal/regions"
	"github.com/genovo-bio/genovo/internal/textio"
)

// Observed is one point mutation reported in the input cohort. Positions are
// 0-based internally; the input and output files use 1-based positions.
type Observed struct {
	Chrom string
	Pos   int
	Ref   byte
	Alt   byte
}

// ClassifiedMutation is an observed mutation assigned to one overlapping
// region with its consequence type. A mutation inside several regions yields
// one classified row per region.
type ClassifiedMutation struct {
	Observed
	Region string
	Type   classify.MutationType
}

// ReadObserved reads observed mutations: whitespace-separated
// chrom, 1-based position, reference base, alternate base. Lines starting
// with '#' are comments.
func ReadObserved(path string) ([]Observed, error) {
	r, err := textio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readObservedFrom(r, path)
}

func readObservedFrom(r io.Reader, name string) ([]Observed, error) {
	var result []Observed

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, textio.Errorf(name, lineNo, "expected 4 fields (chrom pos ref alt), found %d", len(fields))
		}
		pos, err := strconv.Atoi(fields[1])
		if err != nil || pos < 1 {
			return nil, textio.Errorf(name, lineNo, "invalid position %q", fields[1])
		}
		ref, err := parseBase(fields[2])
		if err != nil {
			return nil, textio.Errorf(name, lineNo, "invalid reference base %q", fields[2])
		}
		alt, err := parseBase(fields[3])
		if err != nil {
			return nil, textio.Errorf(name, lineNo, "invalid alternate base %q", fields[3])
		}
		if ref == alt {
			return nil, textio.Errorf(name, lineNo, "reference and alternate base are both %c", ref)
		}
		result = append(result, Observed{Chrom: fields[0], Pos: pos - 1, Ref: ref, Alt: alt})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return result, nil
}

func parseBase(s string) (byte, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("not a single base: %q", s)
	}
	b := s[0] &^ 0x20 // uppercase
	if genome.BaseIndex(b) < 0 {
		return 0, fmt.Errorf("not a DNA base: %q", s)
	}
	return b, nil
}

// Classifier assigns observed mutations to overlapping transcripts.
// Per-transcript coding sequences are built lazily and cached.
type Classifier struct {
	Genome genome.Source
	Logger *zap.Logger

	byChrom map[string][]*regions.Transcript
	cache   map[string]*classify.PointClassifier
}

func NewClassifier(transcripts []*regions.Transcript, src genome.Source, logger *zap.Logger) *Classifier {
	byChrom := make(map[string][]*regions.Transcript)
	for _, t := range transcripts {
		byChrom[t.Chrom] = append(byChrom[t.Chrom], t)
	}
	return &Classifier{
		Genome:  src,
		Logger:  logger,
		byChrom: byChrom,
		cache:   make(map[string]*classify.PointClassifier),
	}
}

func (c *Classifier) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// ClassifyAll classifies every observed mutation against every region whose
// span contains it. The reference base is checked against the genome first:
// a mismatch means the input was called on a different genome build, which
// poisons every downstream statistic, so it is returned as a fatal error.
// Mutations outside all regions are dropped with a debug log.
func (c *Classifier) ClassifyAll(observed []Observed) ([]ClassifiedMutation, error) {
	var result []ClassifiedMutation
	for _, obs := range observed {
		actual, err := genome.Base(c.Genome, obs.Chrom, obs.Pos)
		if err != nil {
			return nil, fmt.Errorf("observed mutation at %s:%d: %w", obs.Chrom, obs.Pos+1, err)
		}
		if actual != obs.Ref {
			return nil, &RefMismatchError{Chrom: obs.Chrom, Pos: obs.Pos, Expected: obs.Ref, Actual: actual}
		}

		matched := false
		for _, t := range c.byChrom[obs.Chrom] {
			if !t.Contains(obs.Pos) {
				continue
			}
			matched = true
			pc, err := c.classifierFor(t)
			if err != nil {
				c.logger().Warn("skipping region with faulty annotation",
					zap.String("region", t.Name), zap.Error(err))
				continue
			}
			mutType, err := pc.Classify(obs.Pos, obs.Ref, obs.Alt)
			if err != nil {
				return nil, err
			}
			result = append(result, ClassifiedMutation{Observed: obs, Region: t.Name, Type: mutType})
		}
		if !matched {
			c.logger().Debug("observed mutation outside all regions",
				zap.String("chrom", obs.Chrom), zap.Int("pos", obs.Pos+1))
		}
	}
	return result, nil
}

func (c *Classifier) classifierFor(t *regions.Transcript) (*classify.PointClassifier, error) {
	if pc, ok := c.cache[t.Name]; ok {
		return pc, nil
	}
	pc, err := classify.NewPointClassifier(t, c.Genome)
	if err != nil {
		return nil, err
	}
	c.cache[t.Name] = pc
	return pc, nil
}

// WriteClassified writes classified mutations as a headerless TSV:
// chrom, 1-based position, ref, alt, region, numeric type code.
func WriteClassified(path string, classified []ClassifiedMutation) error {
	w, err := textio.Create(path)
	if err != nil {
		return err
	}
	if err := writeClassifiedTo(w, classified); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func writeClassifiedTo(w io.Writer, classified []ClassifiedMutation) error {
	for _, cm := range classified {
		_, err := fmt.Fprintf(w, "%s\t%d\t%c\t%c\t%s\t%d\n",
			cm.Chrom, cm.Pos+1, cm.Ref, cm.Alt, cm.Region, cm.Type)
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadClassified reads a classified-mutations TSV written by WriteClassified.
func ReadClassified(path string) ([]ClassifiedMutation, error) {
	r, err := textio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readClassifiedFrom(r, path)
}

func readClassifiedFrom(r io.Reader, name string) ([]ClassifiedMutation, error) {
	var result []ClassifiedMutation

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 6 {
			return nil, textio.Errorf(name, lineNo, "expected 6 columns, found %d", len(fields))
		}
		pos, err := strconv.Atoi(fields[1])
		if err != nil || pos < 1 {
			return nil, textio.Errorf(name, lineNo, "invalid position %q", fields[1])
		}
		ref, err := parseBase(fields[2])
		if err != nil {
			return nil, textio.Errorf(name, lineNo, "invalid reference base %q", fields[2])
		}
		alt, err := parseBase(fields[3])
		if err != nil {
			return nil, textio.Errorf(name, lineNo, "invalid alternate base %q", fields[3])
		}
		code, err := strconv.ParseUint(fields[5], 10, 8)
		if err != nil {
			return nil, textio.Errorf(name, lineNo, "invalid mutation type code %q", fields[5])
		}
		mutType, err := classify.FromCode(uint8(code))
		if err != nil {
			return nil, textio.Errorf(name, lineNo, "%v", err)
		}
		result = append(result, ClassifiedMutation{
			Observed: Observed{Chrom: fields[0], Pos: pos - 1, Ref: ref, Alt: alt},
			Region:   fields[4],
			Type:     mutType,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return result, nil
}
