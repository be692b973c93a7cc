package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cardstream-dev/cardstream/internal/config"
	"github.com/cardstream-dev/cardstream/internal/mockgen"
)

func newMockCommand() *cobra.Command {
	var (
		configPath string
		outDir     string
		rows       int
		seed       int64
		year       int
		month      int
	)

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Generate synthetic raw statement files matching the configured institutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			gen := mockgen.New(cfg, mockgen.Options{Rows: rows, Seed: seed, Year: year, Month: month})
			paths, err := gen.Generate(outDir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "cardstream.yaml", "configuration file")
	cmd.Flags().StringVar(&outDir, "out", "mock", "output directory")
	cmd.Flags().IntVar(&rows, "rows", 25, "rows per institution file")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	cmd.Flags().IntVar(&year, "year", 2026, "statement year")
	cmd.Flags().IntVar(&month, "month", 1, "statement month")

	return cmd
}
