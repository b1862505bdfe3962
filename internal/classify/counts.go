package classify

// ExpectedCounts accumulates expected mutation counts per consequence type,
// indexed by the type's numeric code.
type ExpectedCounts [NumTypes]float64

// Get returns the expected count for a type.
func (c *ExpectedCounts) Get(m MutationType) float64 {
	return c[m]
}

// Add adds v to the expected count of a type.
func (c *ExpectedCounts) Add(m MutationType, v float64) {
	c[m] += v
}

// ObservedCounts tallies observed mutations per consequence type.
type ObservedCounts [NumTypes]int

// Get returns the observed count for a type.
func (c *ObservedCounts) Get(m MutationType) int {
	return c[m]
}

// Inc increments the observed count of a type.
func (c *ObservedCounts) Inc(m MutationType) {
	c[m]++
}
