package pipeline

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/genovo-bio/genovo/internal/classify"
	"github.com/genovo-bio/genovo/internal/textio"
)

// SignificanceRow is one line of the final report: how many mutations of one
// type were observed in one region, how many the model expected, and the
// empirical probability of seeing at least that many under the null.
type SignificanceRow struct {
	Region   string
	Type     classify.MutationType
	Observed int
	Expected float64
	PValue   float64 // NaN when no null distribution exists
}

// Compare joins observed tallies with expected counts and null
// distributions. Every region present in either the expected or the sampled
// input yields one row per consequence type except unknown, which carries no
// signal. A region with expected mutations but no null distribution gets a
// warning and an undefined p-value.
func Compare(classified []ClassifiedMutation, expected []ExpectedMutations, sampled []SampledMutations, logger *zap.Logger) []SignificanceRow {
	if logger == nil {
		logger = zap.NewNop()
	}

	tally := make(map[string]*classify.ObservedCounts)
	for _, cm := range classified {
		if cm.Type == classify.Unknown {
			continue
		}
		counts, ok := tally[cm.Region]
		if !ok {
			counts = &classify.ObservedCounts{}
			tally[cm.Region] = counts
		}
		counts.Inc(cm.Type)
	}

	expByName := make(map[string]*ExpectedMutations, len(expected))
	for i := range expected {
		expByName[expected[i].Name] = &expected[i]
	}
	sampByName := make(map[string]*SampledMutations, len(sampled))
	for i := range sampled {
		sampByName[sampled[i].Name] = &sampled[i]
	}

	names := make([]string, 0, len(expByName))
	seen := make(map[string]bool, len(expByName))
	for i := range expected {
		names = append(names, expected[i].Name)
		seen[expected[i].Name] = true
	}
	for i := range sampled {
		if !seen[sampled[i].Name] {
			names = append(names, sampled[i].Name)
			seen[sampled[i].Name] = true
		}
	}

	var rows []SignificanceRow
	for _, name := range names {
		em := expByName[name]
		sm := sampByName[name]
		counts := tally[name]

		for _, mutType := range classify.AllTypes() {
			if mutType == classify.Unknown {
				continue
			}
			row := SignificanceRow{Region: name, Type: mutType, PValue: math.NaN()}
			if em != nil {
				row.Expected = em.Counts.Get(mutType)
			}
			if counts != nil {
				row.Observed = counts.Get(mutType)
			}
			var dist *Counter
			if sm != nil {
				dist = sm.Dist[mutType]
			}
			if dist == nil || dist.Total() == 0 {
				if row.Expected > 0 {
					logger.Warn("no null distribution for region with expected mutations",
						zap.String("region", name),
						zap.Stringer("type", mutType),
						zap.Float64("expected", row.Expected))
				}
			} else {
				row.PValue = dist.PValueAtLeast(row.Observed)
			}
			rows = append(rows, row)
		}
	}

	// Most significant first; undefined p-values sink to the bottom.
	sort.SliceStable(rows, func(i, j int) bool {
		pi, pj := rows[i].PValue, rows[j].PValue
		ni, nj := math.IsNaN(pi), math.IsNaN(pj)
		switch {
		case ni != nj:
			return nj
		case !ni && pi != pj:
			return pi < pj
		case rows[i].Region != rows[j].Region:
			return rows[i].Region < rows[j].Region
		default:
			return rows[i].Type < rows[j].Type
		}
	})
	return rows
}

// WriteSignificant writes the final report: region, type name, observed
// count, expected count and p-value, most significant first. Undefined
// p-values are written as "NA".
func WriteSignificant(path string, rows []SignificanceRow) error {
	w, err := textio.Create(path)
	if err != nil {
		return err
	}
	if err := writeSignificantTo(w, rows); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func writeSignificantTo(w io.Writer, rows []SignificanceRow) error {
	if _, err := fmt.Fprintln(w, "region\ttype\tobserved\texpected\tp_value"); err != nil {
		return err
	}
	for _, row := range rows {
		p := "NA"
		if !math.IsNaN(row.PValue) {
			p = strconv.FormatFloat(row.PValue, 'g', -1, 64)
		}
		_, err := fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			row.Region, row.Type, row.Observed,
			strconv.FormatFloat(row.Expected, 'g', -1, 64), p)
		if err != nil {
			return err
		}
	}
	return nil
}
