package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/truffles/internal/cache"
	"github.com/jmylchreest/truffles/internal/export"
	"github.com/jmylchreest/truffles/internal/logger"
	"github.com/jmylchreest/truffles/internal/output"
	"github.com/jmylchreest/truffles/pkg/listing"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write cached listings as JSON, JSONL, YAML or SQLite",
	Long: `Export reads the CSV store and writes a snapshot of it.

Text formats go to stdout unless --output is given. The sqlite format needs
an output path; its plots and properties tables are replaced on each export.

Examples:
  truffles export > listings.json
  truffles export -f jsonl --latest -o listings.jsonl
  truffles export -f sqlite -o truffles.db -a limassol`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	flags := exportCmd.Flags()
	flags.StringP("format", "f", "json", "output format: "+exportFormats())
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.StringP("area", "a", "", "only export this area")
	flags.StringP("kind", "k", "", "only export this listing kind")
	flags.Bool("latest", false, "keep only the newest record per listing URL")
	flags.Bool("compact", false, "write JSON arrays on a single line")
}

func exportFormats() string {
	var names []string
	for _, f := range output.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(append(names, export.FormatSQLite), ", ")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, closeLog, err := setup(true)
	if err != nil {
		logError("%v", err)
		return err
	}
	defer closeLog()

	opts := export.Options{}
	opts.Format, _ = cmd.Flags().GetString("format")
	opts.Path, _ = cmd.Flags().GetString("output")
	opts.Latest, _ = cmd.Flags().GetBool("latest")
	opts.Compact, _ = cmd.Flags().GetBool("compact")

	if s, _ := cmd.Flags().GetString("area"); s != "" {
		area, err := listing.ParseArea(s)
		if err != nil {
			logError("%v", err)
			return err
		}
		opts.Area = &area
	}
	if s, _ := cmd.Flags().GetString("kind"); s != "" {
		kind, err := listing.ParseKind(s)
		if err != nil {
			logError("%v", err)
			return err
		}
		opts.Kind = &kind
	}

	records, err := cache.ReadAll(cfg.DataDir)
	if err != nil {
		logger.Error("failed to read cache", "dir", cfg.DataDir, "error", err)
		return err
	}

	counts, err := export.Run(records, opts)
	if err != nil {
		logError("export failed: %v", err)
		return err
	}
	logInfo("Exported %d listings (%d plots, %d properties)", counts.Total(), counts.Plots, counts.Properties)
	return nil
}
