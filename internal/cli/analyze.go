package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/splitstat/splitstat/internal/pipeline"
	"github.com/splitstat/splitstat/internal/report"
	"github.com/splitstat/splitstat/internal/store"
)

var analyzeDataset string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full statistical analysis",
	Long: `Run the complete analysis pipeline against a stored dataset:
group summaries, hypothesis tests, confidence intervals, power analysis and
the rollout recommendation. The report is persisted and printed.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDataset, "dataset", "", "dataset name (default: most recent)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer s.Close()

	ctx := context.Background()

	var ds *store.Dataset
	if analyzeDataset != "" {
		ds, err = s.GetDataset(ctx, analyzeDataset)
	} else {
		ds, err = s.LatestDataset(ctx)
	}
	if errors.Is(err, store.ErrNotFound) {
		return pipeline.ErrNoDataset
	}
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	records, err := s.GetRecords(ctx, ds.ID)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	rpt, err := pipeline.Run(cfg.Analysis, records)
	if err != nil {
		return err
	}

	body, err := json.Marshal(rpt)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if _, err := s.SaveReport(ctx, ds.ID, body); err != nil {
		return fmt.Errorf("failed to persist report: %w", err)
	}

	fmt.Print(report.RenderText(rpt))
	return nil
}
