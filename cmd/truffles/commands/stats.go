package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/truffles/internal/cache"
	"github.com/jmylchreest/truffles/internal/logger"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the local listing store",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, closeLog, err := setup(true)
	if err != nil {
		logError("%v", err)
		return err
	}
	defer closeLog()

	records, err := cache.ReadAll(cfg.DataDir)
	if err != nil {
		logger.Error("failed to read cache", "dir", cfg.DataDir, "error", err)
		return err
	}

	s := cache.Summarize(records)
	if s.Records == 0 {
		fmt.Printf("No listings stored in %s yet\n", cfg.DataDir)
		return nil
	}

	fmt.Printf("%s records for %s listings, last fetched %s\n\n",
		humanize.Comma(int64(s.Records)), humanize.Comma(int64(s.URLs)), humanize.Time(s.LastFetched))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "KIND\tAREA\tLISTINGS\tRECORDS\tMEDIAN PRICE\tLAST FETCHED\t")
	for _, g := range s.Groups {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t€%s\t%s\t\n",
			g.Kind, g.Area,
			humanize.Comma(int64(g.URLs)), humanize.Comma(int64(g.Records)),
			humanize.Comma(int64(g.MedianPrice)),
			g.LastFetched.Local().Format(time.DateTime))
	}
	return w.Flush()
}
