package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/example/internship-tracker/internal/application"
	"github.com/example/internship-tracker/internal/config"
	"github.com/example/internship-tracker/internal/importer"
	"github.com/example/internship-tracker/internal/logging"
	"github.com/example/internship-tracker/internal/persistence/sqlite"
	"github.com/example/internship-tracker/internal/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	dbPath     string
}

// app is the wired object graph shared by the subcommands.
type app struct {
	cfg        config.Config
	logger     *slog.Logger
	gateway    *sqlite.Gateway
	services   application.Services
	reconciler *importer.Reconciler
	reports    *report.Builder
	out        io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "internships",
		Short:        "Track interns, venues, documents and grades",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database file, overrides database.path")

	root.AddCommand(
		newImportCmd(opts),
		newInternsCmd(opts),
		newVenuesCmd(opts),
		newCriteriaCmd(opts),
		newGradesCmd(opts),
		newReportCmd(opts),
		newCalendarCmd(opts),
	)
	return root
}

// withApp bootstraps configuration, logging and the gateway, runs fn and
// closes the gateway on every path.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.dbPath != "" {
		cfg.Database.Path = opts.dbPath
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	gateway, err := sqlite.Open(ctx, sqlite.Config{
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.Database.BusyTimeout,
		JournalMode: cfg.Database.JournalMode,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.Database.Path, "error", err)
		return err
	}
	defer func() {
		if cerr := gateway.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	a := wire(cfg, logger, gateway, cmd.OutOrStdout())
	return fn(ctx, a)
}

func wire(cfg config.Config, logger *slog.Logger, gateway *sqlite.Gateway, out io.Writer) *app {
	repos := sqlite.NewRepositories(gateway)
	now := time.Now

	services := application.NewServices(application.ServiceDeps{
		Interns:      repos.Interns,
		Venues:       repos.Venues,
		Documents:    repos.Documents,
		Observations: repos.Observations,
		Meetings:     repos.Meetings,
		Criteria:     repos.Criteria,
		Grades:       repos.Grades,
		Checklist: application.Checklist{
			Names:  cfg.Documents.Defaults,
			Status: cfg.Documents.DefaultStatus,
		},
		Now:    now,
		Logger: logger,
	})

	reconciler := importer.NewReconciler(importer.Deps{
		Transactor: gateway,
		Interns:    services.Interns,
		Venues:     services.Venues,
		Documents:  services.Documents,
		Now:        now,
		Logger:     logger,
	})

	reports := report.NewBuilder(report.Deps{
		Interns:      services.Interns,
		Venues:       services.Venues,
		Documents:    services.Documents,
		Meetings:     services.Meetings,
		Observations: services.Observations,
		Grades:       services.Grades,
		Criteria:     services.Criteria,
		Logger:       logger,
	})

	return &app{
		cfg:        cfg,
		logger:     logger,
		gateway:    gateway,
		services:   services,
		reconciler: reconciler,
		reports:    reports,
		out:        out,
	}
}

func (a *app) readOptions(delimiter string) importer.ReadOptions {
	opts := importer.ReadOptions{Encodings: a.cfg.Import.Encodings}
	if delimiter == "" {
		delimiter = a.cfg.Import.DefaultDelimiter
	}
	if delimiter == `\t` || delimiter == "tab" {
		delimiter = "\t"
	}
	opts.DefaultDelimiter, _ = utf8.DecodeRuneInString(delimiter)
	return opts
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
