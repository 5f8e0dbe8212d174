package cli

import (
	"context"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/splitstat/splitstat/internal/dataset"
	"github.com/splitstat/splitstat/internal/store"
)

var (
	generateUsers int
	generateSeed  uint64
	generateName  string
	generateForce bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic A/B test dataset",
	Long: `Generate a synthetic two-group dataset with a planted uplift and persist it.

The same seed always produces the identical dataset, so analysis results are
reproducible. An existing dataset with the same name is replaced after
confirmation (or immediately with --force).

Examples:
  splitstat generate
  splitstat generate --users 5000 --seed 7 --name pilot`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&generateUsers, "users", 0, "total users to generate (default from config)")
	generateCmd.Flags().Uint64Var(&generateSeed, "seed", 0, "random seed (default from config)")
	generateCmd.Flags().StringVar(&generateName, "name", "ab_test_data", "dataset name")
	generateCmd.Flags().BoolVar(&generateForce, "force", false, "replace an existing dataset without asking")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	genCfg := cfg.Generator
	if generateUsers > 0 {
		genCfg.Users = generateUsers
	}
	if cmd.Flags().Changed("seed") {
		genCfg.Seed = generateSeed
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer s.Close()

	ctx := context.Background()

	if _, err := s.GetDataset(ctx, generateName); err == nil && !generateForce {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Dataset '%s' already exists. Replace it", generateName),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			fmt.Println("Aborted.")
			return nil
		}
	}

	records, err := dataset.Generate(genCfg)
	if err != nil {
		return err
	}

	ds, err := s.CreateDataset(ctx, generateName, genCfg.Seed, records)
	if err != nil {
		return fmt.Errorf("failed to persist dataset: %w", err)
	}

	control, variant := dataset.Summarize(records)

	fmt.Printf("Generated dataset '%s': %d users (seed %d)\n", ds.Name, ds.NTotal, ds.Seed)
	fmt.Printf("  Control: %d users, %.2f%% conversion\n", control.Count, control.ConversionRate*100)
	fmt.Printf("  Variant: %d users, %.2f%% conversion\n", variant.Count, variant.ConversionRate*100)
	fmt.Println("\nRun 'splitstat analyze' to produce the statistical report.")

	return nil
}
