package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"

	"shirtstats/csvio"
	"shirtstats/db"
	"shirtstats/frequency"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	n          int
	positions  []string
	out        string
	quiet      bool
	configPath string
	mongo      bool
	save       bool
	league     string
	season     int
}

var analyzeOpts analyzeOptions

func init() {
	flags := analyzeCmd.Flags()
	flags.IntVarP(&analyzeOpts.n, "top", "n", 1, "Number of most frequent shirt numbers per position.")
	flags.StringSliceVar(&analyzeOpts.positions, "positions", nil, "Report these positions in this order, abbreviations like GK or CB are expanded. Defaults to every position in input order.")
	flags.StringVar(&analyzeOpts.out, "out", "frequency.csv", "File the table is written to, empty to skip.")
	flags.BoolVarP(&analyzeOpts.quiet, "quiet", "q", false, "Do not print the table.")
	flags.StringVar(&analyzeOpts.configPath, "config", "config.json5", "Configuration file, used for the mongodb connection.")
	flags.BoolVar(&analyzeOpts.mongo, "mongo", false, "Read players from mongodb instead of csv files.")
	flags.BoolVar(&analyzeOpts.save, "save", false, "Store the table in mongodb.")
	flags.StringVar(&analyzeOpts.league, "league", "", "With --mongo, only read this league.")
	flags.IntVar(&analyzeOpts.season, "season", 0, "With --mongo, only read this season.")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [--top <count>] [--positions GK,CB,...] [--out <file.csv>] <scraped.csv>...",
	Short: "Computes the most frequent shirt numbers per position.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd.Context(), analyzeOpts, args, cmd.OutOrStdout())
	},
}

func readRecordsFiles(paths []string) ([]db.PlayerRecord, error) {
	var all []db.PlayerRecord
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "could not open %s", path)
		}
		records, err := csvio.ReadRecords(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "could not read %s", path)
		}
		slog.Debug("read players", "file", path, "count", len(records))
		all = append(all, records...)
	}
	return all, nil
}

func writeTableFile(path string, t frequency.AggregatedTable, n int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", path)
	}
	defer f.Close()

	if err := csvio.WriteTable(f, t, n); err != nil {
		return errors.Wrapf(err, "could not write %s", path)
	}
	return errors.Wrapf(f.Close(), "could not close %s", path)
}

func aggregate(records []db.PlayerRecord, positions []string, n int) (frequency.AggregatedTable, error) {
	if len(positions) == 0 {
		return frequency.AggregateAllPositions(records, n)
	}
	return frequency.AggregatePositions(records, frequency.ResolvePositions(positions), n)
}

func renderTable(w io.Writer, t frequency.AggregatedTable, n int) {
	out := table.NewWriter()
	out.SetOutputMirror(w)

	header := table.Row{"Position"}
	for i := 1; i <= n; i++ {
		suffix := ""
		if n > 1 {
			suffix = " " + strconv.Itoa(i)
		}
		header = append(header, "Shirt"+suffix, "Frequency"+suffix)
	}
	out.AppendHeader(header)

	for _, r := range t {
		row := table.Row{r.Position}
		for i := 0; i < n; i++ {
			if i < len(r.TopShirtNumbers) {
				row = append(row, r.TopShirtNumbers[i].Number, r.TopShirtNumbers[i].Count)
			} else {
				row = append(row, "", "")
			}
		}
		out.AppendRow(row)
	}

	out.SetStyle(table.StyleRounded)
	out.Render()
}

func runAnalyze(ctx context.Context, opts analyzeOptions, files []string, stdout io.Writer) error {
	if opts.mongo && len(files) > 0 {
		return errors.New("give either csv files or --mongo, not both")
	}
	if !opts.mongo && len(files) == 0 {
		return errors.New("no input, give csv files or --mongo")
	}
	if opts.save && !opts.mongo {
		return errors.New("--save needs --mongo")
	}

	var records []db.PlayerRecord
	var store *db.Store
	if opts.mongo {
		cfg, err := loadConfig(opts.configPath, false, 0, 0)
		if err != nil {
			return err
		}
		s, closeStore, err := connectStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		store = s

		records, err = store.Players(ctx, opts.league, opts.season)
		if err != nil {
			return err
		}
	} else {
		var err error
		records, err = readRecordsFiles(files)
		if err != nil {
			return err
		}
	}

	result, err := aggregate(records, opts.positions, opts.n)
	if err != nil {
		return errors.Wrap(err, "could not aggregate")
	}
	slog.InfoContext(ctx, "aggregated", "players", len(records), "positions", len(result))

	if opts.out != "" {
		if err := writeTableFile(opts.out, result, opts.n); err != nil {
			return err
		}
		slog.InfoContext(ctx, "wrote table", "file", opts.out)
	}
	if opts.save {
		league := opts.league
		if league == "" {
			league = "all"
		}
		if err := store.SaveTable(ctx, league, opts.season, opts.n, result); err != nil {
			return err
		}
	}
	if !opts.quiet {
		renderTable(stdout, result, opts.n)
	}
	return nil
}
