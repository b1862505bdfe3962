package pipeline

import (
	"github.com/genovo-bio/genovo/internal/genome"
	"github.com/genovo-bio/genovo/internal/regions"
)

// Shared fixture: a forward-strand gene with the coding sequence
// ATG GGT TGG TAC TAA split across two exons.
//
//	chr1: AAAAA CCC ATGGGTTG GTATAG GTACTAA CCCCCC
//	      0-4   UTR CDS 8-15 intron CDS     3' UTR
func createForwardTranscript() *regions.Transcript {
	return &regions.Transcript{
		Name:   "TF1",
		Chrom:  "chr1",
		Strand: regions.StrandForward,
		Span:   regions.Interval{Start: 5, End: 35},
		Exons: []regions.Interval{
			{Start: 5, End: 16},
			{Start: 22, End: 35},
		},
		CDS: []regions.CDSRegion{
			{Interval: regions.Interval{Start: 8, End: 16}, Phase: 0},
			{Interval: regions.Interval{Start: 22, End: 29}, Phase: 1},
		},
	}
}

func createTestGenome() *genome.FASTA {
	return genome.NewFromMap(map[string]string{
		"chr1": "AAAAA" + "CCC" + "ATGGGTTG" + "GTATAG" + "GTACTAA" + "CCCCCC",
		"chr3": "CC" + "CATGAAATAA" + "CC",
	})
}

// Phase-shift fixture: the single coding interval starts mid-codon, its first
// base completing a codon begun upstream. Genomic C|ATG AAA TAA.
func createPhaseShiftTranscript() *regions.Transcript {
	return &regions.Transcript{
		Name:   "TP1",
		Chrom:  "chr3",
		Strand: regions.StrandForward,
		Span:   regions.Interval{Start: 2, End: 12},
		Exons:  []regions.Interval{{Start: 2, End: 12}},
		CDS: []regions.CDSRegion{
			{Interval: regions.Interval{Start: 2, End: 12}, Phase: 1},
		},
	}
}
