package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/truffles/internal/seeds"
	"github.com/jmylchreest/truffles/pkg/listing"
)

var seedsCmd = &cobra.Command{
	Use:   "seeds",
	Short: "List the search pages a crawl starts from",
	Long: `Seeds prints the seed table after applying the --site, --area and --kind
filters, exactly as crawl would use it.

Examples:
  truffles seeds
  truffles seeds -k plot
  truffles seeds --seeds my-seeds.yaml`,
	RunE: runSeeds,
}

func init() {
	rootCmd.AddCommand(seedsCmd)

	flags := seedsCmd.Flags()
	flags.StringP("area", "a", "", "only show this area")
	flags.StringP("kind", "k", "", "only show this listing kind")
	flags.String("site", string(listing.SiteBazaraki), "source site")
	flags.String("seeds", "", "YAML file replacing the built-in seed table")
}

func runSeeds(cmd *cobra.Command, args []string) error {
	cfg, closeLog, err := setup(true)
	if err != nil {
		logError("%v", err)
		return err
	}
	defer closeLog()

	if path, _ := cmd.Flags().GetString("seeds"); path != "" {
		cfg.SeedsFile = path
	}

	filter, err := seedFilter(cmd)
	if err != nil {
		logError("%v", err)
		return err
	}
	table, err := loadSeeds(cfg)
	if err != nil {
		logError("%v", err)
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SITE\tAREA\tKIND\tURL")
	for _, e := range seeds.Select(table, filter) {
		area, kind := "-", "-"
		if e.Area != nil {
			area = string(*e.Area)
		}
		if e.Kind != nil {
			kind = string(*e.Kind)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Site, area, kind, e.URL)
	}
	return w.Flush()
}
