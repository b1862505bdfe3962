package classify

import (
	"fmt"

	"github.com/genovo-bio/genovo/internal/genome"
	"github.com/genovo-bio/genovo/internal/regions"
)

// SpliceWindow is the number of intronic bases on each side of an exon
// junction that form the canonical splice site (the GT/AG dinucleotides).
const SpliceWindow = 2

// PointClassifier classifies point mutations against one transcript. It
// precomputes the spliced coding sequence so codons spanning exon boundaries
// translate correctly. Safe for concurrent use once constructed.
type PointClassifier struct {
	t      *regions.Transcript
	coding string // spliced CDS in reading direction, uppercase
	codons string // coding without the leading phase bases; codon n is codons[3n:3n+3]
	phase  int    // bases of the first coding interval that complete an upstream codon
}

// NewPointClassifier builds a classifier for t, fetching the coding sequence
// from src. The transcript's CDS intervals are concatenated in reading
// direction; on the reverse strand each interval is reverse complemented.
func NewPointClassifier(t *regions.Transcript, src genome.Source) (*PointClassifier, error) {
	pc := &PointClassifier{t: t}

	reading := t.ReadingOrderCDS()
	if len(reading) > 0 {
		pc.phase = reading[0].Phase
	}
	var coding []byte
	for _, cds := range reading {
		seq, err := src.Sequence(t.Chrom, cds.Start, cds.End)
		if err != nil {
			return nil, fmt.Errorf("coding sequence of %s: %w", t.Name, err)
		}
		if t.IsReverseStrand() {
			seq = genome.ReverseComplement(seq)
		}
		coding = append(coding, seq...)
	}
	pc.coding = string(coding)
	if pc.phase <= len(pc.coding) {
		pc.codons = pc.coding[pc.phase:]
	}
	return pc, nil
}

// Classify determines the consequence type of substituting ref by alt at the
// given genomic position. ref and alt are forward-strand bases; the caller is
// responsible for validating ref against the genome. An error indicates the
// transcript annotation disagrees with the supplied reference base, which
// invalidates every classification for this transcript.
//
// Splice-site classification takes priority over codon-level effects.
func (pc *PointClassifier) Classify(pos int, ref, alt byte) (MutationType, error) {
	if intron, ok := pc.t.FindIntron(pos); ok {
		if pos < intron.Start+SpliceWindow || pos >= intron.End-SpliceWindow {
			return SpliceSite, nil
		}
		return Unknown, nil
	}

	offset := pc.t.CDSOffset(pos)
	if offset < 0 {
		// exonic but non-coding (UTR)
		return Unknown, nil
	}
	idx := offset - pc.phase
	if idx < 0 {
		// inside the partial codon completed by an upstream transcript
		return Unknown, nil
	}

	codonNum := idx / 3
	posInCodon := idx % 3
	refCodon := GetCodon(pc.codons, codonNum)
	if refCodon == "" {
		// trailing partial codon
		return Unknown, nil
	}

	codingRef, codingAlt := ref, alt
	if pc.t.IsReverseStrand() {
		codingRef = genome.Complement(ref)
		codingAlt = genome.Complement(alt)
	}
	if refCodon[posInCodon] != codingRef {
		return Unknown, fmt.Errorf(
			"transcript %s: codon base %c at %s:%d does not match reference base %c",
			pc.t.Name, refCodon[posInCodon], pc.t.Chrom, pos, codingRef)
	}

	altCodon := MutateCodon(refCodon, posInCodon, codingAlt)
	refAA := TranslateCodon(refCodon)
	altAA := TranslateCodon(altCodon)

	switch {
	case codonNum == 0 && IsStartCodon(refCodon) && !IsStartCodon(altCodon):
		return StartLoss, nil
	case refAA == '*':
		if altAA == '*' {
			return Synonymous, nil
		}
		return StopLoss, nil
	case altAA == '*':
		return Nonsense, nil
	case refAA == altAA:
		return Synonymous, nil
	default:
		return Missense, nil
	}
}

// CodingSequence returns the spliced coding sequence in reading direction.
func (pc *PointClassifier) CodingSequence() string {
	return pc.coding
}
