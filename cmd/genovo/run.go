package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/genovo-bio/genovo/internal/genome"
	"github.com/genovo-bio/genovo/internal/pipeline"
	"github.com/genovo-bio/genovo/internal/rates"
	"github.com/genovo-bio/genovo/internal/regions"
)

type runConfig struct {
	action  string
	id      string
	samples int
	seed    uint64
	workers int

	regionsPath     string
	genomePath      string
	ratesPath       string
	possiblePath    string
	expectedPath    string
	sampledPath     string
	observedPath    string
	classifiedPath  string
	significantPath string
}

func newRunCmd() *cobra.Command {
	cfg := &runConfig{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the mutation significance pipeline",
		Long: `Run one stage of the pipeline, or all of them in order.

Stages run in order enumerate, expect, sample, classify, compare. When
several stages run in one invocation, each stage consumes the previous
stage's in-memory result; a stage run on its own reads its input from the
file the previous stage wrote.`,
		Example: `  # Full pipeline
  genovo run --regions regions.tsv --genome hg38.fa --probabilities rates.tsv \
    --observed cohort.txt --significant significant.tsv

  # One transcript, one stage per job-array task
  genovo run --action sample --id ENST00000311936 \
    --possible possible.txt.gz --sampled sampled.tsv.gz -n 100000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runPipeline(cfg, logger)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&cfg.action, "action", "all",
		"stage to run: all, enumerate, expect, sample, classify, compare")
	fl.StringVar(&cfg.id, "id", "", "restrict the run to one region by name")
	fl.IntVarP(&cfg.samples, "number-of-random-samples", "n", 1000,
		"random realizations per region")
	fl.Uint64Var(&cfg.seed, "seed", 1, "random seed for sampling")
	fl.IntVar(&cfg.workers, "workers", 0, "worker goroutines (0 = number of CPUs)")

	fl.StringVar(&cfg.regionsPath, "regions", "", "genomic regions file (or .duckdb store)")
	fl.StringVar(&cfg.genomePath, "genome", "", "reference genome FASTA")
	fl.StringVar(&cfg.ratesPath, "probabilities", "", "mutation probability table")
	fl.StringVar(&cfg.possiblePath, "possible", "possible_mutations.txt.gz", "possible mutations file")
	fl.StringVar(&cfg.expectedPath, "expected", "expected_mutations.tsv", "expected mutations file")
	fl.StringVar(&cfg.sampledPath, "sampled", "sampled_mutations.tsv.gz", "sampled null distributions file")
	fl.StringVar(&cfg.observedPath, "observed", "", "observed mutations file")
	fl.StringVar(&cfg.classifiedPath, "classified", "classified_mutations.tsv", "classified mutations file")
	fl.StringVar(&cfg.significantPath, "significant", "significant_mutations.tsv", "significance report file")

	return cmd
}

// pipelineStages in execution order.
var pipelineStages = []string{"enumerate", "expect", "sample", "classify", "compare"}

func stagesFor(action string) (map[string]bool, error) {
	selected := make(map[string]bool, len(pipelineStages))
	if action == "all" {
		for _, s := range pipelineStages {
			selected[s] = true
		}
		return selected, nil
	}
	for _, s := range pipelineStages {
		if s == action {
			selected[s] = true
			return selected, nil
		}
	}
	return nil, fmt.Errorf("unknown action %q (want all, enumerate, expect, sample, classify or compare)", action)
}

func runPipeline(cfg *runConfig, logger *zap.Logger) error {
	run, err := stagesFor(cfg.action)
	if err != nil {
		return err
	}

	// Transcripts and the genome are shared by the enumerate and classify
	// stages; load them at most once.
	var (
		transcripts []*regions.Transcript
		ref         genome.Source
	)
	loadAnnotations := func() error {
		if transcripts != nil {
			return nil
		}
		if cfg.regionsPath == "" {
			return fmt.Errorf("--regions is required for the %s action", cfg.action)
		}
		if cfg.genomePath == "" {
			return fmt.Errorf("--genome is required for the %s action", cfg.action)
		}
		transcripts, err = regions.ReadFile(cfg.regionsPath, cfg.id)
		if err != nil {
			return err
		}
		logger.Info("loaded genomic regions",
			zap.String("file", cfg.regionsPath), zap.Int("regions", len(transcripts)))
		ref, err = genome.LoadFASTA(cfg.genomePath)
		if err != nil {
			return err
		}
		logger.Info("loaded reference genome", zap.String("file", cfg.genomePath))
		return nil
	}

	var (
		possible     []pipeline.TranscriptMutations
		havePossible bool
	)
	loadPossible := func() ([]pipeline.TranscriptMutations, error) {
		if havePossible {
			return possible, nil
		}
		p, err := pipeline.ReadPossible(cfg.possiblePath, cfg.id)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded possible mutations",
			zap.String("file", cfg.possiblePath), zap.Int("regions", len(p)))
		possible = p
		havePossible = true
		return possible, nil
	}

	if run["enumerate"] {
		if err := loadAnnotations(); err != nil {
			return err
		}
		if cfg.ratesPath == "" {
			return fmt.Errorf("--probabilities is required for the %s action", cfg.action)
		}
		table, err := rates.Load(cfg.ratesPath)
		if err != nil {
			return err
		}
		logger.Info("loaded probability table",
			zap.String("file", cfg.ratesPath), zap.Int("radius", table.Radius()))

		enum := &pipeline.Enumerator{Genome: ref, Rates: table, Logger: logger}
		possible, err = enum.EnumerateAll(transcripts, cfg.workers, cfg.id)
		if err != nil {
			return err
		}
		havePossible = true
		if err := pipeline.WritePossible(cfg.possiblePath, possible); err != nil {
			return err
		}
		logger.Info("wrote possible mutations",
			zap.String("file", cfg.possiblePath), zap.Int("regions", len(possible)))
	}

	var (
		expected     []pipeline.ExpectedMutations
		haveExpected bool
	)
	if run["expect"] {
		p, err := loadPossible()
		if err != nil {
			return err
		}
		expected = pipeline.Expect(p)
		haveExpected = true
		if err := pipeline.WriteExpected(cfg.expectedPath, expected); err != nil {
			return err
		}
		logger.Info("wrote expected mutations", zap.String("file", cfg.expectedPath))
	}

	var (
		sampled     []pipeline.SampledMutations
		haveSampled bool
	)
	if run["sample"] {
		p, err := loadPossible()
		if err != nil {
			return err
		}
		sampler := &pipeline.Sampler{N: cfg.samples, Seed: cfg.seed, Logger: logger}
		sampled, err = sampler.SampleAll(p, cfg.workers, "")
		if err != nil {
			return err
		}
		haveSampled = true
		if err := pipeline.WriteSampled(cfg.sampledPath, sampled); err != nil {
			return err
		}
		logger.Info("wrote sampled null distributions", zap.String("file", cfg.sampledPath))
	}

	var (
		classified     []pipeline.ClassifiedMutation
		haveClassified bool
	)
	if run["classify"] {
		if err := loadAnnotations(); err != nil {
			return err
		}
		if cfg.observedPath == "" {
			return fmt.Errorf("--observed is required for the %s action", cfg.action)
		}
		observed, err := pipeline.ReadObserved(cfg.observedPath)
		if err != nil {
			return err
		}
		logger.Info("loaded observed mutations",
			zap.String("file", cfg.observedPath), zap.Int("mutations", len(observed)))

		classifier := pipeline.NewClassifier(transcripts, ref, logger)
		classified, err = classifier.ClassifyAll(observed)
		if err != nil {
			return err
		}
		haveClassified = true
		if err := pipeline.WriteClassified(cfg.classifiedPath, classified); err != nil {
			return err
		}
		logger.Info("wrote classified mutations",
			zap.String("file", cfg.classifiedPath), zap.Int("mutations", len(classified)))
	}

	if run["compare"] {
		if !haveExpected {
			expected, err = pipeline.ReadExpected(cfg.expectedPath, cfg.id)
			if err != nil {
				return err
			}
		}
		if !haveSampled {
			sampled, err = pipeline.ReadSampled(cfg.sampledPath, cfg.id)
			if err != nil {
				return err
			}
		}
		if !haveClassified {
			classified, err = pipeline.ReadClassified(cfg.classifiedPath)
			if err != nil {
				return err
			}
		}
		rows := pipeline.Compare(classified, expected, sampled, logger)
		if err := pipeline.WriteSignificant(cfg.significantPath, rows); err != nil {
			return err
		}
		logger.Info("wrote significance report",
			zap.String("file", cfg.significantPath), zap.Int("rows", len(rows)))
	}

	return nil
}
