package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/tablebook/internal/auth"
	"github.com/example/tablebook/internal/booking"
	"github.com/example/tablebook/internal/config"
	"github.com/example/tablebook/internal/db"
	"github.com/example/tablebook/internal/migrate"
	"github.com/example/tablebook/internal/postgres"
	"github.com/example/tablebook/internal/sweeper"
	"github.com/example/tablebook/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the staff web UI + booking sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			log, err := newLogger(cfg.DevMode)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}

			if migrateUp {
				if err := migrate.Up(ctx, d); err != nil {
					return err
				}
			}

			windowRepo := postgres.NewWindowRepo(d)
			bookingRepo := postgres.NewBookingRepo(d)
			engine := booking.NewEngine(windowRepo, windowRepo, bookingRepo, bookingRepo)

			sw := &sweeper.Sweeper{
				Store:    bookingRepo,
				Interval: cfg.SweepInterval,
				Log:      log.Named("sweeper"),
			}
			go func() { _ = sw.Run(ctx) }()

			ws := &web.Server{
				Auth:     auth.NewStore(d, cfg.CookieHashKey, cfg.CookieBlockKey),
				Engine:   engine,
				Windows:  windowRepo,
				Bookings: bookingRepo,
				Log:      log.Named("web"),
			}
			return web.Start(ctx, cfg.ListenAddr, ws.Routes(), log)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
