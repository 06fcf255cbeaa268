package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"weekspend/internal/config"
	"weekspend/internal/console"
	"weekspend/internal/core"
	"weekspend/internal/log"
	"weekspend/internal/present"
	"weekspend/internal/services"
	"weekspend/internal/weekly"
)

type reportOptions struct {
	backend string
	dataDir string
	dbPath  string
	locale  string
	tz      string
	now     string
	expand  []string
	json    bool
}

// NewReportCommand builds the weekspend-report root command. Flags override
// the matching environment settings.
func NewReportCommand(out, errOut io.Writer) *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:           "weekspend-report",
		Short:         "Compare this week's spending with last week's",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd.Context(), out, errOut, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.backend, "backend", "b", "", "Data backend: memory, sqlite or sheets (default $DATA_BACKEND)")
	f.StringVarP(&opts.dataDir, "data-dir", "d", "", "Seed directory for the memory backend (default $DATA_DIR)")
	f.StringVar(&opts.dbPath, "db", "", "SQLite database path (default $SQLITE_DB_PATH)")
	f.StringVarP(&opts.locale, "locale", "l", "", "Display locale: en-GB or it-IT (default $WEEK_LOCALE)")
	f.StringVar(&opts.tz, "timezone", "", "IANA time zone for week boundaries (default $WEEK_TIMEZONE)")
	f.StringVar(&opts.now, "now", "", "Pin the current instant, RFC3339 or YYYY-MM-DD")
	f.StringArrayVarP(&opts.expand, "expand", "e", nil, "Show transactions for a category (repeatable)")
	f.BoolVar(&opts.json, "json", false, "Print the report as JSON")
	return cmd
}

func (o *reportOptions) apply(cfg *config.Config) {
	if o.backend != "" {
		cfg.DataBackend = o.backend
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.dbPath != "" {
		cfg.SQLiteDBPath = o.dbPath
	}
	if o.locale != "" {
		cfg.WeekLocale = o.locale
	}
	if o.tz != "" {
		cfg.WeekTimezone = o.tz
	}
}

func runReport(ctx context.Context, out, errOut io.Writer, opts *reportOptions) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg := config.Load()
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if errOut == nil {
		errOut = os.Stderr
	}
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentCLI,
		Output:    errOut,
	})

	var clock func() time.Time
	if opts.now != "" {
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		pinned, err := core.ParseExpenseDate(opts.now, loc)
		if err != nil {
			return fmt.Errorf("invalid --now %q: %w", opts.now, err)
		}
		clock = func() time.Time { return pinned }
	}
	agg, err := NewAggregator(cfg, clock)
	if err != nil {
		return err
	}

	res, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.DataBackend, err)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Warn("Failed to close backend", log.FieldError, err)
		}
	}()

	reports := services.NewReportService(res.Backend, agg, nil, logger.WithComponent(log.ComponentReport).Logger)
	report, err := reports.Weekly(ctx)
	if err != nil {
		return err
	}

	view := present.NewWeekly(report, agg.Locale(), weekly.ExpansionFrom(opts.expand))
	r := console.NewRenderer(out)
	if opts.json {
		return r.JSON(view)
	}
	return r.Render(view)
}
