package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/splitstat/splitstat/internal/dataset"
	"github.com/splitstat/splitstat/internal/pipeline"
	"github.com/splitstat/splitstat/internal/store"
)

var (
	exportDataset string
	exportFormat  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export raw dataset records",
	Long: `Export the raw records of a stored dataset in CSV or JSON format.

Examples:
  splitstat export --format csv > ab-data.csv
  splitstat export --dataset pilot --format json > pilot.json`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportDataset, "dataset", "", "dataset name (default: most recent)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format (csv or json)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "csv" && exportFormat != "json" {
		return fmt.Errorf("invalid format: must be 'csv' or 'json'")
	}

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
	if exportDataset != "" {
		ds, err = s.GetDataset(ctx, exportDataset)
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

	if exportFormat == "csv" {
		return exportCSV(records)
	}
	return exportJSON(records)
}

func exportCSV(records []dataset.Record) error {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write(dataset.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.UserID, 10),
			string(r.Group),
			strconv.FormatBool(r.Converted),
			strconv.FormatFloat(r.TimeSpent, 'f', 2, 64),
			strconv.Itoa(r.Clicks),
			strconv.Itoa(r.Sessions),
			r.Timestamp.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return nil
}

type jsonExport struct {
	Records []jsonRecord `json:"records"`
}

type jsonRecord struct {
	UserID    int64   `json:"user_id"`
	Group     string  `json:"group"`
	Converted bool    `json:"converted"`
	TimeSpent float64 `json:"time_spent"`
	Clicks    int     `json:"clicks"`
	Sessions  int     `json:"session_count"`
	Timestamp string  `json:"timestamp"`
}

func exportJSON(records []dataset.Record) error {
	export := jsonExport{
		Records: make([]jsonRecord, len(records)),
	}

	for i, r := range records {
		export.Records[i] = jsonRecord{
			UserID:    r.UserID,
			Group:     string(r.Group),
			Converted: r.Converted,
			TimeSpent: r.TimeSpent,
			Clicks:    r.Clicks,
			Sessions:  r.Sessions,
			Timestamp: r.Timestamp.Format(time.RFC3339),
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}
