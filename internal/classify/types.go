// Package classify determines the consequence type of point mutations against
// a transcript's coding structure.
package classify

import "fmt"

// MutationType is the closed 7-way classification of a point mutation's
// predicted effect. The numeric codes are fixed and appear as-is in the
// possible-mutations and classified-mutations files.
type MutationType uint8

const (
	Unknown    MutationType = 0 // non-coding or not classifiable
	Synonymous MutationType = 1
	Missense   MutationType = 2
	Nonsense   MutationType = 3
	StopLoss   MutationType = 4
	StartLoss  MutationType = 5
	SpliceSite MutationType = 6

	// NumTypes is the number of consequence types.
	NumTypes = 7
)

var typeNames = [NumTypes]string{
	"unknown",
	"synonymous",
	"missense",
	"nonsense",
	"stop_loss",
	"start_loss",
	"splice_site",
}

// String returns the snake_case name used in the tabular output files.
func (m MutationType) String() string {
	if int(m) < len(typeNames) {
		return typeNames[m]
	}
	return fmt.Sprintf("invalid(%d)", uint8(m))
}

// IsValid reports whether m is one of the seven fixed codes.
func (m MutationType) IsValid() bool {
	return m < NumTypes
}

// FromCode converts a numeric code into a MutationType.
func FromCode(code uint8) (MutationType, error) {
	if code >= NumTypes {
		return Unknown, fmt.Errorf("invalid mutation type code %d", code)
	}
	return MutationType(code), nil
}

// ParseMutationType converts a snake_case name into a MutationType.
func ParseMutationType(name string) (MutationType, error) {
	for i, n := range typeNames {
		if n == name {
			return MutationType(i), nil
		}
	}
	return Unknown, fmt.Errorf("invalid mutation type %q", name)
}

// AllTypes returns the seven consequence types in code order.
func AllTypes() [NumTypes]MutationType {
	var types [NumTypes]MutationType
	for i := range types {
		types[i] = MutationType(i)
	}
	return types
}
