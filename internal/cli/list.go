package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/splitstat/splitstat/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored datasets",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer s.Close()

	datasets, err := s.ListDatasets(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list datasets: %w", err)
	}

	if len(datasets) == 0 {
		fmt.Println("No datasets yet. Run 'splitstat generate' to create one.")
		return nil
	}

	fmt.Printf("%-24s %-10s %-12s %s\n", "NAME", "USERS", "SEED", "CREATED")
	fmt.Println(strings.Repeat("-", 60))
	for _, d := range datasets {
		fmt.Printf("%-24s %-10d %-12d %s\n", d.Name, d.NTotal, d.Seed, d.CreatedAt.Format("2006-01-02 15:04"))
	}

	return nil
}
