package regions

// Strand values for Transcript.Strand.
const (
	StrandForward int8 = 1
	StrandReverse int8 = -1
)

// Transcript represents one annotated transcript: its genomic span, exon
// structure and coding intervals. Instances are immutable once loaded and are
// shared read-only across workers.
type Transcript struct {
	Name   string
	Chrom  string
	Strand int8
	Span   Interval
	Exons  []Interval  // ascending genomic order
	CDS    []CDSRegion // ascending genomic order, subset of Exons
}

// IsForwardStrand returns true if the transcript is on the forward strand.
func (t *Transcript) IsForwardStrand() bool {
	return t.Strand == StrandForward
}

// IsReverseStrand returns true if the transcript is on the reverse strand.
func (t *Transcript) IsReverseStrand() bool {
	return t.Strand == StrandReverse
}

// IsProteinCoding returns true if the transcript has coding intervals.
func (t *Transcript) IsProteinCoding() bool {
	return len(t.CDS) > 0
}

// Contains returns true if pos falls inside the transcript span.
func (t *Transcript) Contains(pos int) bool {
	return t.Span.Contains(pos)
}

// CodingLen returns the total number of coding bases.
func (t *Transcript) CodingLen() int {
	n := 0
	for _, cds := range t.CDS {
		n += cds.Len()
	}
	return n
}

// FindExon returns the exon containing pos using binary search,
// or nil if pos is not exonic.
func (t *Transcript) FindExon(pos int) *Interval {
	lo, hi := 0, len(t.Exons)-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		e := &t.Exons[mid]
		if e.Contains(pos) {
			return e
		}
		if pos < e.Start {
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}
	return nil
}

// FindCDS returns the coding interval containing pos, or nil.
func (t *Transcript) FindCDS(pos int) *CDSRegion {
	lo, hi := 0, len(t.CDS)-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		c := &t.CDS[mid]
		if c.Contains(pos) {
			return c
		}
		if pos < c.Start {
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}
	return nil
}

// FindIntron returns the intron containing pos, derived from the gaps between
// consecutive exons. The second return value is false if pos is not intronic.
func (t *Transcript) FindIntron(pos int) (Interval, bool) {
	for i := 1; i < len(t.Exons); i++ {
		intron := Interval{Start: t.Exons[i-1].End, End: t.Exons[i].Start}
		if intron.Contains(pos) {
			return intron, true
		}
	}
	return Interval{}, false
}

// ReadingOrderCDS returns the coding intervals in reading direction: genomic
// order on the forward strand, reversed on the reverse strand.
func (t *Transcript) ReadingOrderCDS() []CDSRegion {
	if t.IsForwardStrand() {
		return t.CDS
	}
	out := make([]CDSRegion, len(t.CDS))
	for i, cds := range t.CDS {
		out[len(t.CDS)-1-i] = cds
	}
	return out
}

// CDSOffset maps a genomic position to its 0-based offset within the spliced
// coding sequence (in reading direction, before any phase adjustment).
// Returns -1 if pos is not within any coding interval.
func (t *Transcript) CDSOffset(pos int) int {
	offset := 0
	if t.IsForwardStrand() {
		for _, cds := range t.CDS {
			if cds.Contains(pos) {
				return offset + pos - cds.Start
			}
			if pos >= cds.End {
				offset += cds.Len()
			}
		}
		return -1
	}
	for i := len(t.CDS) - 1; i >= 0; i-- {
		cds := t.CDS[i]
		if cds.Contains(pos) {
			return offset + cds.End - 1 - pos
		}
		if pos < cds.Start {
			offset += cds.Len()
		}
	}
	return -1
}
