package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cardstream-dev/cardstream/internal/auditlog"
	"github.com/cardstream-dev/cardstream/internal/config"
	"github.com/cardstream-dev/cardstream/internal/model"
	"github.com/cardstream-dev/cardstream/internal/pipeline"
	"github.com/cardstream-dev/cardstream/internal/store"
)

func newProcessCommand() *cobra.Command {
	var (
		configPath string
		inDir      string
		outPath    string
		auditPath  string
		dsn        string
		anonymize  bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Normalize raw statement exports into canonical transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(configPath, inDir, outPath, auditPath, dsn, anonymize, logLevel, cmd)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "cardstream.yaml", "configuration file")
	cmd.Flags().StringVar(&inDir, "in", "", "directory of raw statement exports (required)")
	_ = cmd.MarkFlagRequired("in")
	cmd.Flags().StringVar(&outPath, "out", "canonical.csv", "canonical output CSV")
	cmd.Flags().StringVar(&auditPath, "audit", "", "append skipped rows to this audit CSV")
	cmd.Flags().StringVar(&dsn, "db", "", "also load into Postgres at this DSN")
	cmd.Flags().BoolVar(&anonymize, "anonymize", false, "replace account keys with stable synthetic tokens")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (default info)")

	return cmd
}

func runProcess(configPath, inDir, outPath, auditPath, dsn string, anonymize bool, logLevel string, cmd *cobra.Command) error {
	logger := newLogger(logLevel)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	opts := pipeline.Options{Anonymize: anonymize}
	if auditPath != "" {
		opts.Audit = auditlog.Open(auditPath)
	}

	p, err := pipeline.New(cfg, logger, opts)
	if err != nil {
		return err
	}

	files, err := scanStatements(inDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no statement files found in %s", inDir)
	}

	txns, summary, err := p.Run(files)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	csvStore := &store.CSVStore{Path: outPath}
	if _, err := csvStore.Save(ctx, txns); err != nil {
		return err
	}

	if dsn != "" {
		pg, err := store.OpenPostgres(ctx, dsn)
		if err != nil {
			return err
		}
		defer pg.Close()
		inserted, err := pg.Save(ctx, txns)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d new rows into Postgres\n", inserted)
	}

	printSummary(cmd, summary, outPath)
	if summary.UnknownAccounts > 0 {
		return fmt.Errorf("%d rows skipped for unregistered cards; register them in %s and re-run",
			summary.UnknownAccounts, configPath)
	}
	return nil
}

func printSummary(cmd *cobra.Command, s model.RunSummary, outPath string) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Processed %d files, %d canonical transactions -> %s\n", len(s.Files), s.Canonical, outPath)
	fmt.Fprintf(w, "  unsupported files:  %d\n", s.UnsupportedFiles)
	fmt.Fprintf(w, "  parse errors:       %d\n", s.ParseErrors)
	fmt.Fprintf(w, "  unknown accounts:   %d\n", s.UnknownAccounts)
	fmt.Fprintf(w, "  unknown-type rows:  %d\n", s.UnknownTypes)
}

// scanStatements lists statement files (csv/xml) in dir, non-recursive.
func scanStatements(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".xml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
