package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cardstream-dev/cardstream/internal/config"
	"github.com/cardstream-dev/cardstream/internal/rfm"
	"github.com/cardstream-dev/cardstream/internal/rules"
	"github.com/cardstream-dev/cardstream/internal/store"
)

func newRFMCommand() *cobra.Command {
	var (
		configPath string
		inPath     string
		outPath    string
		dimension  string
	)

	cmd := &cobra.Command{
		Use:   "rfm",
		Short: "Compute Recency/Frequency/Monetary features from canonical transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRFM(configPath, inPath, outPath, dimension, cmd)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "cardstream.yaml", "configuration file")
	cmd.Flags().StringVar(&inPath, "in", "canonical.csv", "canonical transactions CSV")
	cmd.Flags().StringVar(&outPath, "out", "rfm.csv", "RFM output CSV")
	cmd.Flags().StringVar(&dimension, "by", "merchant", "grouping dimension: merchant, channel or account")

	return cmd
}

func runRFM(configPath, inPath, outPath, dimension string, cmd *cobra.Command) error {
	txns, err := store.LoadFile(inPath)
	if err != nil {
		return err
	}

	var rows []rfm.Row
	switch dimension {
	case "merchant":
		// Exclusion flags live in the merchant rule table.
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		merchantRules, err := rules.LoadMerchantRules(cfg.Rules.MerchantRules)
		if err != nil {
			return err
		}
		rows = rfm.ByMerchant(txns, rules.NewClassifier(merchantRules).ExcludedLabels())
	case "channel":
		rows = rfm.ByChannel(txns)
	case "account":
		rows = rfm.ByAccount(txns)
	default:
		return fmt.Errorf("unknown dimension %q (want merchant, channel or account)", dimension)
	}

	if err := writeRFM(outPath, dimension, rows); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d %s groups -> %s\n", len(rows), dimension, outPath)
	return nil
}

func writeRFM(path, dimension string, rows []rfm.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if err := cw.Write([]string{dimension, "recency_days", "frequency", "monetary"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rows {
		rec := []string{r.Key, strconv.Itoa(r.RecencyDays), strconv.Itoa(r.Frequency), r.Monetary.StringFixed(2)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row for %s: %w", r.Key, err)
		}
	}
	return cw.Error()
}
