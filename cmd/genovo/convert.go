package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/genovo-bio/genovo/internal/regions"
)

func newConvertCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a genomic regions file to a DuckDB store",
		Long: `Convert the tab-separated genomic regions file to a DuckDB store.

The store answers per-region lookups without scanning the whole file, which
pays off when a job array runs one process per --id against a large
annotation set. Any command that accepts --regions takes either format.`,
		Example: `  genovo convert --input regions.tsv --output regions.duckdb
  genovo convert -i regions.tsv.gz -o regions.duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runConvert(inputPath, outputPath, logger)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "genomic regions file to convert")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "DuckDB store to create")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	return cmd
}

func runConvert(inputPath, outputPath string, logger *zap.Logger) error {
	if ext := filepath.Ext(outputPath); ext != ".duckdb" && ext != ".db" {
		outputPath += ".duckdb"
	}

	// Recreate the store from scratch; a partial previous run must not
	// leave stale rows behind.
	if _, err := os.Stat(outputPath); err == nil {
		if err := os.Remove(outputPath); err != nil {
			return fmt.Errorf("removing existing store: %w", err)
		}
	}

	transcripts, err := regions.ReadFile(inputPath, "")
	if err != nil {
		return err
	}
	logger.Info("loaded genomic regions",
		zap.String("file", inputPath), zap.Int("regions", len(transcripts)))

	store, err := regions.OpenStore(outputPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.CreateSchema(); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	for i, t := range transcripts {
		if err := store.Insert(t); err != nil {
			return err
		}
		if (i+1)%1000 == 0 {
			logger.Debug("inserting regions", zap.Int("done", i+1))
		}
	}

	count, err := store.Count()
	if err != nil {
		return fmt.Errorf("verifying store: %w", err)
	}
	if count != len(transcripts) {
		return fmt.Errorf("store holds %d regions, expected %d", count, len(transcripts))
	}

	logger.Info("wrote regions store",
		zap.String("file", outputPath), zap.Int("regions", count))
	return nil
}
