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

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write report artifacts from the latest analysis",
	Long: `Render the most recent analysis as report.json, report.txt, report.pdf
and the comparison plots.

Example:
  splitstat report --out ./outputs`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportOut, "out", "", "output directory (default from config)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	outDir := cfg.OutputDir
	if reportOut != "" {
		outDir = reportOut
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer s.Close()

	ctx := context.Background()

	saved, err := s.LatestReport(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("report not found, run 'splitstat analyze' first")
	}
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}

	var rpt pipeline.Report
	if err := json.Unmarshal(saved.Body, &rpt); err != nil {
		return fmt.Errorf("failed to decode stored report: %w", err)
	}

	records, err := s.GetRecords(ctx, saved.DatasetID)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	artifacts, err := report.WriteAll(rpt, records, outDir)
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", artifacts.JSONPath)
	fmt.Printf("Wrote %s\n", artifacts.TextPath)
	fmt.Printf("Wrote %s\n", artifacts.PDFPath)
	for _, p := range artifacts.Plots {
		fmt.Printf("Wrote %s/%s/%s\n", outDir, report.PlotsDirName, p)
	}

	return nil
}
