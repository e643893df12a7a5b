package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/bot"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/config"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/dialog"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/curves"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/materials"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/expr"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/infra/db"
	httpx "github.com/nmorabowen/constitutiveRelationshipsApp/internal/infra/http"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/infra/logger"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/units"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "rcbot",
		Short:        "Stress-strain material builder for Telegram",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config/example.yaml", "path to the YAML config")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Apply migrations, then run the bot and the HTTP server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending database migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				if err := db.Migrate(cfg.Postgres.DSN); err != nil {
					return fmt.Errorf("migrations failed: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:     "eval <expression>",
			Short:   "Evaluate a unit expression, result in N, mm and MPa",
			Example: "  rcbot eval '240*kgf/cm^2'\n  rcbot eval -2*ksi",
			Args:    cobra.MinimumNArgs(1),

			// Expressions such as "-2*ksi" look like flags.
			DisableFlagParsing: true,

			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) > 0 && args[0] == "--" {
					args = args[1:]
				}
				if len(args) == 1 && (args[0] == "-h" || args[0] == "--help") {
					return cmd.Help()
				}
				if len(args) == 0 {
					return errors.New("eval needs an expression")
				}
				v, err := expr.Evaluate(strings.Join(args, " "), units.Default)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), expr.Format(v))
				return nil
			},
		},
		&cobra.Command{
			Use:   "units",
			Short: "List the supported unit symbols",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "SYMBOL\tQUANTITY\tFACTOR")
				for _, u := range units.Default.Units() {
					fmt.Fprintf(w, "%s\t%s\t%s\n", u.Symbol, u.Quantity, expr.Format(u.Factor))
				}
				return w.Flush()
			},
		},
	)
	return root
}

func runServe(parent context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Telegram.Token == "" {
		return errors.New("telegram.token is not set (APP_TELEGRAM_TOKEN)")
	}
	if cfg.Curves.BaseURL == "" {
		return errors.New("curves.base_url is not set (APP_CURVES_BASE_URL)")
	}

	log := logger.New(cfg.App.Env)

	// File names of exported workbooks carry a local timestamp.
	if loc, err := time.LoadLocation(cfg.App.Timezone); err != nil {
		log.Warn("unknown timezone, keeping system default", "timezone", cfg.App.Timezone)
	} else {
		time.Local = loc
	}

	if err := db.Migrate(cfg.Postgres.DSN); err != nil {
		logger.LogError(log, "migrations failed", err)
		return err
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.LogError(log, "db connect failed", err)
		return err
	}
	defer pool.Close()
	log.Info("db connected")

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.LogError(log, "telegram auth failed", err)
		return err
	}
	api.Debug = cfg.Telegram.Debug
	log.Info("telegram authorized", "bot", api.Self.UserName)

	ev := expr.New(units.Default)
	b := bot.New(api, log,
		dialog.NewRepo(pool), materials.NewRepo(pool),
		curves.NewClient(cfg.Curves.BaseURL, cfg.Curves.Timeout), ev)
	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, ev, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server started", "addr", cfg.HTTP.Addr)
		return srv.Start()
	})
	g.Go(func() error {
		err := b.Run(gctx, cfg.Telegram.PollTimeout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		api.StopReceivingUpdates()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("graceful shutdown complete")
	return err
}
