package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"shirtstats/config"
	"shirtstats/csvio"
	"shirtstats/db"
	"shirtstats/transfermarkt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type scrapeOptions struct {
	configPath string
	out        string
	leagues    []string
	season     int
	workers    int
	browser    bool
	controlURL string
	mongo      bool
	force      bool
	combined   string
}

var scrapeOpts scrapeOptions

func init() {
	flags := scrapeCmd.Flags()
	flags.StringVar(&scrapeOpts.configPath, "config", "config.json5", "Configuration file, defaults apply when it does not exist.")
	flags.StringVar(&scrapeOpts.out, "out", ".", "Directory the league csv files are written to.")
	flags.StringSliceVar(&scrapeOpts.leagues, "league", nil, "Only scrape these configured leagues.")
	flags.IntVar(&scrapeOpts.season, "season", 0, "Season start year, overrides the configuration.")
	flags.IntVar(&scrapeOpts.workers, "workers", 0, "Number of club pages fetched at once, overrides the configuration.")
	flags.BoolVar(&scrapeOpts.browser, "browser", false, "Fetch pages with a headless browser.")
	flags.StringVar(&scrapeOpts.controlURL, "control-url", "", "DevTools url of a running browser, one is launched when empty.")
	flags.BoolVar(&scrapeOpts.mongo, "mongo", false, "Also store players in mongodb.")
	flags.BoolVar(&scrapeOpts.force, "force", false, "Scrape leagues mongodb already has.")
	flags.StringVar(&scrapeOpts.combined, "combined", "", "Also write every scraped player to <combined>.csv.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--league <name>]... [--out <dir>]",
	Short: "Scrapes league squads from transfermarkt into one csv per league.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScrape(cmd.Context(), scrapeOpts)
	},
}

func loadConfig(path string, browser bool, season, workers int) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, errors.Wrap(err, "could not read config")
	}
	if season != 0 {
		cfg.Season = season
	}
	if workers != 0 {
		cfg.Workers = workers
	}
	cfg.Browser = cfg.Browser || browser
	return cfg, nil
}

func newFetcher(cfg config.Config, controlURL string) (transfermarkt.Fetcher, func(), error) {
	if !cfg.Browser {
		return transfermarkt.NewHTTPFetcher(cfg.Headers, cfg.Retries), func() {}, nil
	}

	fetcher, err := transfermarkt.NewBrowserFetcher(controlURL, cfg.Headers, cfg.Workers)
	if err != nil {
		return nil, nil, err
	}
	return fetcher, func() {
		if err := fetcher.Close(); err != nil {
			slog.Warn("could not close browser", "err", err)
		}
	}, nil
}

func connectStore(ctx context.Context, cfg config.Config) (*db.Store, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	store, err := db.Connect(connectCtx, cfg.MongoURI, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(context.Background()); err != nil {
			slog.Warn("could not disconnect from mongodb", "err", err)
		}
	}, nil
}

func writeRecordsFile(path string, records []db.PlayerRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", path)
	}
	defer f.Close()

	if err := csvio.WriteRecords(f, records); err != nil {
		return errors.Wrapf(err, "could not write %s", path)
	}
	return errors.Wrapf(f.Close(), "could not close %s", path)
}

func runScrape(ctx context.Context, opts scrapeOptions) error {
	cfg, err := loadConfig(opts.configPath, opts.browser, opts.season, opts.workers)
	if err != nil {
		return err
	}
	leagues, err := cfg.Filter(opts.leagues)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.out, 0755); err != nil {
		return errors.Wrapf(err, "could not create %s", opts.out)
	}

	fetcher, closeFetcher, err := newFetcher(cfg, opts.controlURL)
	if err != nil {
		return err
	}
	defer closeFetcher()

	scraper := transfermarkt.New(fetcher, nil, cfg)
	scraper.Force = opts.force
	if opts.mongo {
		store, closeStore, err := connectStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		scraper.Store = store
	}
	defer scraper.LogTimes(ctx)

	var all []db.PlayerRecord
	failed := 0
	for _, league := range leagues {
		slog.InfoContext(ctx, "scraping league", "league", league.Name, "season", cfg.Season)

		players, err := scraper.ScrapeLeague(ctx, league)
		if errors.Is(err, transfermarkt.ErrDuplicate) {
			slog.WarnContext(ctx, "skipping league", "league", league.Name, "reason", err)
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			slog.ErrorContext(ctx, "could not scrape league", "league", league.Name, "err", err)
			failed++
			if len(players) == 0 {
				continue
			}
		}

		path := filepath.Join(opts.out, league.Name+".csv")
		if err := writeRecordsFile(path, players); err != nil {
			return err
		}
		all = append(all, players...)
		slog.InfoContext(ctx, "finished league", "league", league.Name, "players", len(players), "file", path)
	}

	if opts.combined != "" && len(all) > 0 {
		path := filepath.Join(opts.out, opts.combined+".csv")
		if err := writeRecordsFile(path, all); err != nil {
			return err
		}
		slog.InfoContext(ctx, "wrote combined file", "players", len(all), "file", path)
	}

	if failed > 0 {
		return errors.Errorf("%d of %d leagues failed", failed, len(leagues))
	}
	return nil
}
