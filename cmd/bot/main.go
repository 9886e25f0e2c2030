package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"portfolioLab/internal/config"
	"portfolioLab/internal/finance"
	"portfolioLab/internal/logging"
	"portfolioLab/internal/metrics"
	"portfolioLab/internal/openai"
	"portfolioLab/internal/server"
	"portfolioLab/internal/storage"
	"portfolioLab/internal/telegram"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "portfoliolab",
		Short:         "Portfolio analytics Telegram bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), engineCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("exit")
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Register the webhook and serve Telegram updates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logging.Setup("info", "")
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel, cfg.LogFile)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	// Ensure parent directory for the DB exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.OpenSQLite("file:" + cfg.DBPath + "?_fk=1")
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.InitSchema(db); err != nil {
		return err
	}
	log.Info().Str("component", "storage").Str("path", cfg.DBPath).Msg("usage log ready")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	provider := finance.NewProvider(finance.ProviderOptions{
		RequestsPerSec: cfg.Engine.RequestsPerSec,
		Metrics:        m,
	})
	commentator := openai.NewCommentator(cfg.OpenAIKey)
	if !commentator.Enabled() {
		log.Warn().Str("component", "openai").Msg("OPENAI_API_KEY not set, /explain disabled")
	}

	bot, err := telegram.NewBot(cfg.TelegramToken, cfg.WebhookPublicURL, telegram.Deps{
		Store:     storage.NewStore(db),
		Market:    provider,
		Explainer: commentator,
		Metrics:   m,
		Engine:    cfg.Engine,
	})
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	mux := server.NewHTTPMux(bot.WebhookHandler, m.Handler())
	addr := ":" + cfg.Port
	log.Info().Str("component", "http").Str("addr", addr).Msg("listening")
	return server.ListenAndServe(ctx, addr, mux)
}

func engineCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "engine",
		Short: "Print the effective analytics defaults",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = os.Getenv("ENGINE_CONFIG")
			}
			e, err := config.LoadEngine(path)
			if err != nil {
				return err
			}
			return yaml.NewEncoder(cmd.OutOrStdout()).Encode(e)
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "engine YAML file (defaults to $ENGINE_CONFIG)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
