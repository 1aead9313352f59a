// Command notify watches coastal-service announcement sources and emails
// island subscribers about entries that concern their island, at most once
// per announcement.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/island-notify/internal/adapter/http"
	"github.com/couchcryptid/island-notify/internal/adapter/mail"
	"github.com/couchcryptid/island-notify/internal/adapter/stream"
	"github.com/couchcryptid/island-notify/internal/config"
	"github.com/couchcryptid/island-notify/internal/domain"
	"github.com/couchcryptid/island-notify/internal/geo"
	"github.com/couchcryptid/island-notify/internal/match"
	"github.com/couchcryptid/island-notify/internal/observability"
	"github.com/couchcryptid/island-notify/internal/pipeline"
	"github.com/couchcryptid/island-notify/internal/source"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "notify",
		Short:         "Island announcement watcher and notifier",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(sourcesCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(initCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadGeo loads the geographic vocabulary and subscriber table.
func loadGeo(cfg *config.Config) (*geo.Index, geo.Contacts, error) {
	idx, err := geo.Load(cfg.InfrastructurePaths, cfg.IslandsPath)
	if err != nil {
		return nil, nil, err
	}
	contacts, err := geo.LoadContacts(cfg.ContactsPath)
	if err != nil {
		return nil, nil, err
	}
	return idx, contacts, nil
}

// buildNotifier returns the mail client, or a dry-run notifier that only
// logs when mail delivery is disabled.
func buildNotifier(cfg *config.Config, logger *slog.Logger) pipeline.Notifier {
	if cfg.MailEnabled {
		logger.Info("mail delivery enabled", "sender", cfg.MailSenderEmail)
		return mail.NewClient(cfg, logger)
	}
	logger.Info("mail delivery disabled, jobs will be logged only")
	return &dryRunNotifier{logger: logger}
}

// dryRunNotifier logs jobs instead of sending them.
type dryRunNotifier struct {
	logger *slog.Logger
}

func (n *dryRunNotifier) Send(_ context.Context, job domain.Job) error {
	n.logger.Info("dry-run notification",
		"subject", job.Subject, "recipients", len(job.Recipients))
	return nil
}

func sourceOptions(cfg *config.Config, idx *geo.Index, logger *slog.Logger) source.Options {
	return source.Options{
		Index:     idx,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.RequestTimeout,
		Delay:     cfg.DownloadDelay,
		Logger:    logger,
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Watch all sources periodically and serve operational endpoints",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := observability.NewLogger(cfg)
			metrics := observability.NewMetrics()

			idx, contacts, err := loadGeo(cfg)
			if err != nil {
				return err
			}

			notifier := buildNotifier(cfg, logger)

			var audit pipeline.AuditWriter
			var auditWriter *stream.Writer
			if cfg.KafkaEnabled {
				auditWriter = stream.NewWriter(cfg, logger)
				audit = auditWriter
				logger.Info("audit stream enabled", "topic", cfg.KafkaAuditTopic)
			} else {
				logger.Info("audit stream disabled")
			}

			cycle := pipeline.New(idx, contacts, cfg.LedgerDir, notifier, audit, logger, metrics)
			sources := source.All(sourceOptions(cfg, idx, logger))
			watcher := pipeline.NewWatcher(cycle, sources, cfg.PollInterval, logger, metrics)

			srv := httpadapter.NewServer(cfg.HTTPAddr, watcher, logger)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server error", "error", err)
				}
			}()

			go func() {
				if err := watcher.Run(ctx); err != nil {
					logger.Error("watcher error", "error", err)
				}
			}()

			<-ctx.Done()
			logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
			if auditWriter != nil {
				if err := auditWriter.Close(); err != nil {
					logger.Error("audit writer close error", "error", err)
				}
			}

			logger.Info("shutdown complete")
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [source...]",
		Short: "Run one cycle for the named sources (default: all) and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := observability.NewLogger(cfg)
			metrics := observability.NewMetrics()

			idx, contacts, err := loadGeo(cfg)
			if err != nil {
				return err
			}

			opts := sourceOptions(cfg, idx, logger)
			var sources []source.Source
			if len(args) == 0 {
				sources = source.All(opts)
			} else {
				for _, name := range args {
					s, ok := source.ByName(name, opts)
					if !ok {
						return fmt.Errorf("unknown source %q (known: %v)", name, source.Names())
					}
					sources = append(sources, s)
				}
			}

			notifier := buildNotifier(cfg, logger)
			cycle := pipeline.New(idx, contacts, cfg.LedgerDir, notifier, nil, logger, metrics)

			failed := 0
			for _, s := range sources {
				if err := cycle.Run(cmd.Context(), s); err != nil {
					logger.Error("cycle failed", "source", s.Name(), "error", err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d cycles failed", failed, len(sources))
			}
			return nil
		},
	}
}

func sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the registered announcement sources",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			idx, _, err := loadGeo(cfg)
			if err != nil {
				return err
			}
			for _, s := range source.All(sourceOptions(cfg, idx, slog.Default())) {
				grain := "unit"
				if s.Scope().Grain == match.SettlementGrain {
					grain = "settlement"
				}
				fmt.Printf("%-16s %-16s grain=%s\n", s.Name(), s.Label(), grain)
			}
			return nil
		},
	}
}
