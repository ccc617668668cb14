package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"geostats/internal/api"
	"geostats/internal/banner"
	"geostats/internal/config"
	"geostats/internal/database"
	"geostats/internal/database/repositories"
	"geostats/internal/discovery"
	"geostats/internal/enrichment"
	"geostats/internal/ingestion"
	"geostats/internal/logging"
	"geostats/internal/metrics"
	"geostats/internal/report"
	"geostats/internal/version"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

type options struct {
	envFile  string
	kind     string
	csv      bool
	json     bool
	sqlite   string
	serve    bool
	watch    bool
	logLevel string
	version  bool
}

func main() {
	var opts options
	flag.StringVar(&opts.envFile, "env", config.DefaultEnvFile, "dotenv file to load")
	flag.StringVar(&opts.kind, "kind", "all", "analysis to run: access, error, successful or all")
	flag.BoolVar(&opts.csv, "csv", false, "write CSV reports to REPORT_DIR")
	flag.BoolVar(&opts.json, "json", false, "write JSON snapshots to REPORT_DIR")
	flag.StringVar(&opts.sqlite, "sqlite", "", "save the results into this SQLite database")
	flag.BoolVar(&opts.serve, "serve", false, "serve the results over HTTP")
	flag.BoolVar(&opts.watch, "watch", false, "with -serve, re-run when the log directory changes")
	flag.StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	flag.BoolVar(&opts.version, "version", false, "print the version and exit")
	flag.Parse()

	if opts.version {
		fmt.Println("geostats", version.Version)
		return
	}

	if err := run(opts); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func run(opts options) error {
	switch opts.kind {
	case "all", ingestion.KindAccess, ingestion.KindError, ingestion.KindSuccessful:
	default:
		return fmt.Errorf("unknown kind %q", opts.kind)
	}

	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger := logging.New(level)

	banner.Print()

	recorder := metrics.New()
	analyzer := ingestion.NewAnalyzer(ingestion.Options{
		LogDir:           cfg.LogDir,
		GeoIPDB:          cfg.GeoIPDB,
		SelfIPs:          cfg.SelfIPs,
		ExcludeCountries: cfg.ExcludeCountries,
		TopN:             cfg.TopN,
		KeepRecords:      opts.csv,
	}, enrichment.GeoIPOpener(cfg.GeoIPCacheSize), recorder, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.serve {
		return serve(ctx, cfg, opts, analyzer, recorder, logger)
	}

	results, err := analyze(ctx, analyzer, opts.kind)
	if err != nil {
		return err
	}
	if err := printSummaries(os.Stdout, results); err != nil {
		return err
	}
	return export(cfg, opts, results, logger)
}

// analyze runs one kind, or all of them. Kinds not run stay nil.
func analyze(ctx context.Context, a *ingestion.Analyzer, kind string) (*ingestion.Results, error) {
	if kind == "all" {
		return a.RunAll(ctx)
	}

	results := &ingestion.Results{}
	var err error
	switch kind {
	case ingestion.KindAccess:
		results.Access, err = a.AnalyzeAccess(ctx)
	case ingestion.KindError:
		results.Errors, err = a.AnalyzeErrors(ctx)
	case ingestion.KindSuccessful:
		results.Successful, err = a.AnalyzeSuccessful(ctx)
	}
	return results, err
}

func printSummaries(w io.Writer, r *ingestion.Results) error {
	if r.Access != nil {
		if err := report.PrintAccessSummary(w, r.Access); err != nil {
			return err
		}
	}
	if r.Errors != nil {
		if err := report.PrintErrorSummary(w, r.Errors); err != nil {
			return err
		}
	}
	if r.Successful != nil {
		if err := report.PrintSuccessfulSummary(w, r.Successful); err != nil {
			return err
		}
	}
	return nil
}

type reportFile struct {
	name  string
	write func(io.Writer) error
}

func export(cfg *config.Config, opts options, r *ingestion.Results, logger *pterm.Logger) error {
	var files []reportFile

	if opts.csv {
		if s := r.Access; s != nil {
			files = append(files,
				reportFile{report.IPRecordsFile, func(w io.Writer) error { return report.WriteIPRecords(w, s.Records) }},
				reportFile{report.WeeklyFile, func(w io.Writer) error { return report.WriteWeekly(w, s.WeeklyStats) }},
			)
		}
		if s := r.Errors; s != nil {
			files = append(files,
				reportFile{report.ErrorsByDateFile, func(w io.Writer) error { return report.WriteErrorsByDate(w, s) }},
				reportFile{report.ErrorsByCountryFile, func(w io.Writer) error { return report.WriteErrorsByCountry(w, s) }},
			)
		}
		if s := r.Successful; s != nil {
			files = append(files,
				reportFile{report.SuccessfulDetailsFile, func(w io.Writer) error { return report.WriteSuccessfulDetails(w, s.Records()) }},
			)
		}
	}

	if opts.json {
		if s := r.Access; s != nil {
			files = append(files, reportFile{"access_stats.json", func(w io.Writer) error { return report.WriteJSON(w, s) }})
		}
		if s := r.Errors; s != nil {
			files = append(files, reportFile{"error_stats.json", func(w io.Writer) error { return report.WriteJSON(w, s) }})
		}
		if s := r.Successful; s != nil {
			files = append(files, reportFile{"successful_stats.json", func(w io.Writer) error { return report.WriteJSON(w, s) }})
		}
	}

	for _, f := range files {
		path, err := report.WriteFile(cfg.ReportDir, f.name, f.write)
		if err != nil {
			logger.WithCaller().Error("Failed to write report", logger.Args("path", path, "error", err))
			return err
		}
		logger.Info("Report written", logger.Args("path", path))
	}

	if opts.sqlite != "" {
		return saveSQLite(opts.sqlite, cfg.SQLiteKeepRuns, r, logger)
	}
	return nil
}

func saveSQLite(path string, keep int, r *ingestion.Results, logger *pterm.Logger) (err error) {
	db, err := database.NewConnection(path, logger)
	if err != nil {
		logger.WithCaller().Error("Failed to open export database", logger.Args("path", path, "error", err))
		return err
	}
	defer func() {
		if cerr := database.Close(db); cerr != nil && err == nil {
			err = cerr
		}
	}()

	repo := repositories.NewRunRepository(db)
	var pruned int64
	saved := func(kind string, save func() error) error {
		if err := save(); err != nil {
			logger.WithCaller().Error("Failed to save analysis run", logger.Args("kind", kind, "error", err))
			return fmt.Errorf("save %s run: %w", kind, err)
		}
		n, err := database.PruneRuns(db, kind, keep, logger)
		if err != nil {
			logger.WithCaller().Warn("Failed to prune old runs", logger.Args("kind", kind, "error", err))
		}
		pruned += n
		return nil
	}

	if s := r.Access; s != nil {
		if err := saved(ingestion.KindAccess, func() error { _, err := repo.SaveAccess(s); return err }); err != nil {
			return err
		}
	}
	if s := r.Errors; s != nil {
		if err := saved(ingestion.KindError, func() error { _, err := repo.SaveErrors(s); return err }); err != nil {
			return err
		}
	}
	if s := r.Successful; s != nil {
		if err := saved(ingestion.KindSuccessful, func() error { _, err := repo.SaveSuccessful(s); return err }); err != nil {
			return err
		}
	}

	if pruned > 0 {
		if err := database.Vacuum(db, logger); err != nil {
			logger.WithCaller().Warn("Vacuum failed", logger.Args("error", err))
		}
	}
	if err := database.OptimizeDatabase(db, logger); err != nil {
		logger.WithCaller().Warn("Database optimization failed", logger.Args("error", err))
	}
	logger.Info("Results saved", logger.Args("path", path))
	return nil
}

func serve(ctx context.Context, cfg *config.Config, opts options, a *ingestion.Analyzer, recorder *metrics.Recorder, logger *pterm.Logger) error {
	gin.SetMode(gin.ReleaseMode)

	store := api.NewStore()
	refresh := func() {
		results, err := a.RunAll(ctx)
		if err != nil {
			logger.Warn("Analysis aborted", logger.Args("error", err))
			return
		}
		store.Set(results)
		logger.Info("Results published", logger.Args("duration", results.Duration))
		if opts.sqlite != "" {
			if err := saveSQLite(opts.sqlite, cfg.SQLiteKeepRuns, results, logger); err != nil {
				logger.Warn("SQLite export failed", logger.Args("error", err))
			}
		}
	}
	refresh()

	server := api.NewServer(cfg.ServerAddr, store, recorder, opts.sqlite, logger)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	if opts.watch {
		watcher, err := ingestion.NewDirWatcher(cfg.LogDir,
			[]string{discovery.AccessPrefix, discovery.ErrorPrefix}, cfg.WatchDebounce, refresh, logger)
		if err != nil {
			logger.Warn("Log directory watch disabled", logger.Args("error", err))
		} else {
			defer watcher.Close()
		}
	}

	<-ctx.Done()
	logger.Info("Shutting down")
	return server.Stop(context.Background())
}
