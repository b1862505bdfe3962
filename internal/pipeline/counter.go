package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Counter is a histogram over "number of mutations in one realization".
// Index i holds how many of the N realizations produced exactly i mutations.
type Counter struct {
	values []int
}

// Inc records one realization that produced the given number of hits.
func (c *Counter) Inc(hits int) {
	for len(c.values) <= hits {
		c.values = append(c.values, 0)
	}
	c.values[hits]++
}

// Total returns the number of recorded realizations.
func (c *Counter) Total() int {
	total := 0
	for _, v := range c.values {
		total += v
	}
	return total
}

// MaxHits returns the largest hit count with a non-zero tally.
func (c *Counter) MaxHits() int {
	for i := len(c.values) - 1; i >= 0; i-- {
		if c.values[i] > 0 {
			return i
		}
	}
	return 0
}

// PValueAtLeast returns the one-sided empirical right-tail probability of
// seeing at least `observed` mutations: the fraction of realizations with a
// hit count >= observed. An observed count of 0 yields 1.0; an observed
// count beyond every realization yields 0.0. With no recorded realizations
// the statistic is undefined and NaN is returned.
func (c *Counter) PValueAtLeast(observed int) float64 {
	total := c.Total()
	if total == 0 {
		return math.NaN()
	}
	if observed < 0 {
		observed = 0
	}
	tail := 0
	for i := observed; i < len(c.values); i++ {
		tail += c.values[i]
	}
	return float64(tail) / float64(total)
}

// Mean returns the average hit count across realizations, NaN when empty.
func (c *Counter) Mean() float64 {
	total := c.Total()
	if total == 0 {
		return math.NaN()
	}
	sum := 0
	for hits, n := range c.values {
		sum += hits * n
	}
	return float64(sum) / float64(total)
}

// String encodes the histogram as "|"-joined tallies, index 0 first.
func (c *Counter) String() string {
	if len(c.values) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, v := range c.values {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

// ParseCounter decodes a "|"-joined histogram.
func ParseCounter(s string) (*Counter, error) {
	c := &Counter{}
	if s == "" {
		return c, nil
	}
	for _, part := range strings.Split(s, "|") {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid histogram tally %q", part)
		}
		c.values = append(c.values, v)
	}
	return c, nil
}
