package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/truffles/internal/cache"
	"github.com/jmylchreest/truffles/internal/config"
	"github.com/jmylchreest/truffles/internal/crawler"
	"github.com/jmylchreest/truffles/internal/logger"
	"github.com/jmylchreest/truffles/internal/seeds"
	"github.com/jmylchreest/truffles/pkg/fetcher"
	"github.com/jmylchreest/truffles/pkg/listing"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Fetch new and stale listings into the local store",
	Long: `Crawl expands the seed search pages into result pages, collects every
listing they link to, drops listings fetched within the freshness window
and parses the rest. Parsed listings are appended to the CSV store as they
arrive, so an interrupted crawl keeps everything fetched so far.

Examples:
  truffles crawl
  truffles crawl -a paphos -k plot
  truffles crawl --force --throttle 1.5s`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	flags := crawlCmd.Flags()
	flags.StringP("area", "a", "", "only crawl this area: famagusta, larnaka, lefkosia, limassol, paphos")
	flags.StringP("kind", "k", "", "only crawl this listing kind: plot, property")
	flags.String("site", string(listing.SiteBazaraki), "source site")
	flags.BoolP("force", "f", false, "refetch listings even if they are still fresh")
	flags.StringP("throttle", "t", "", "minimum interval between requests, in ms or as a duration (default 1s)")
	flags.String("freshness", "", "skip listings fetched more recently than this, e.g. 30d or 720h; 0 refetches all (default 30d)")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.String("user-agent", "", "User-Agent header (default desktop Chrome)")
	flags.String("seeds", "", "YAML file replacing the built-in seed table")

	_ = viper.BindPFlag("throttle", flags.Lookup("throttle"))
	_ = viper.BindPFlag("freshness", flags.Lookup("freshness"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("user-agent", flags.Lookup("user-agent"))
	_ = viper.BindPFlag("seeds", flags.Lookup("seeds"))
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, closeLog, err := setup(false)
	if err != nil {
		logError("%v", err)
		return err
	}
	defer closeLog()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

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
	selected := seeds.Select(table, filter)
	if len(selected) == 0 {
		logInfo("No seeds match the given filters")
		return nil
	}

	site, err := crawler.SiteFor(*filter.Site)
	if err != nil {
		logError("%v", err)
		return err
	}

	store, err := cache.Load(cfg.DataDir)
	if err != nil {
		logger.Error("failed to load cache", "dir", cfg.DataDir, "error", err)
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close cache", "error", err)
		}
	}()
	logInfo("Loaded %s cached records from %s", humanize.Comma(int64(store.Len())), cfg.DataDir)

	f := fetcher.NewStatic(fetcher.StaticConfig{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
	})
	defer f.Close()

	engineCfg := crawler.DefaultConfig()
	engineCfg.Throttle = cfg.Throttle
	engineCfg.Fetch.Timeout = cfg.Timeout
	if cfg.UserAgent != "" {
		engineCfg.Fetch.UserAgent = cfg.UserAgent
	}

	engine, err := crawler.NewEngine(f, site, engineCfg)
	if err != nil {
		logError("%v", err)
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	logInfo("Crawling %d search page(s) at one request per %s", len(selected), cfg.Throttle)

	sum, err := crawler.Run(ctx, engine, store, crawler.RunOptions{
		SearchURLs: seeds.URLs(selected),
		Freshness:  cfg.Freshness,
		Force:      force,
	})
	printSummary(sum)

	switch {
	case errors.Is(err, context.Canceled):
		logInfo("Interrupted; %d listing(s) stored before stopping", sum.Stored)
		return nil
	case err != nil:
		logError("crawl aborted: %v", err)
		return err
	}
	return nil
}

func printSummary(sum crawler.Summary) {
	logInfo("Result pages:   %s", humanize.Comma(int64(sum.Pages)))
	logInfo("Listings found: %s (%s still fresh)", humanize.Comma(int64(sum.Discovered)), humanize.Comma(int64(sum.Fresh)))
	logInfo("Stored:         %s", humanize.Comma(int64(sum.Stored)))
	logInfo("Failed:         %s", humanize.Comma(int64(sum.Failed)))
	logInfo("Took:           %s", sum.Duration.Round(time.Second))
}

// seedFilter builds a seed filter from the --site, --area and --kind flags.
func seedFilter(cmd *cobra.Command) (seeds.Filter, error) {
	var filter seeds.Filter

	siteName, _ := cmd.Flags().GetString("site")
	site, err := listing.ParseSite(siteName)
	if err != nil {
		return filter, err
	}
	filter.Site = &site

	if s, _ := cmd.Flags().GetString("area"); s != "" {
		area, err := listing.ParseArea(s)
		if err != nil {
			return filter, err
		}
		filter.Area = &area
	}
	if s, _ := cmd.Flags().GetString("kind"); s != "" {
		kind, err := listing.ParseKind(s)
		if err != nil {
			return filter, err
		}
		filter.Kind = &kind
	}
	return filter, nil
}

// loadSeeds returns the configured seed table, validated.
func loadSeeds(cfg *config.Config) ([]seeds.Entry, error) {
	if cfg.SeedsFile != "" {
		logger.Debug("loading seeds", "path", cfg.SeedsFile)
		return seeds.Load(cfg.SeedsFile)
	}
	table := seeds.Default()
	if err := seeds.Validate(table); err != nil {
		return nil, err
	}
	return table, nil
}
