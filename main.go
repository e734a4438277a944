package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/gosocial/internal/config"
	"github.com/sidereusnuntius/gosocial/internal/initialization"
	service "github.com/sidereusnuntius/gosocial/internal/service/impl"
	"github.com/sidereusnuntius/gosocial/internal/web"
	"github.com/sidereusnuntius/gosocial/internal/wellknown"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "gosocial",
	Short:        "Actor, WebFinger and outbox server for a federated social network",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve actor documents, WebFinger and outboxes over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.ReadConfig(configPath)
		if err != nil {
			return err
		}
		logger := web.SetupLogger(cfg.Debug)

		store, err := initialization.OpenStore(&cfg)
		if err != nil {
			return fmt.Errorf("opening %s store: %w", cfg.Driver, err)
		}
		defer store.Close()
		log.Info().Str("driver", cfg.Driver).Msg("storage ready")

		svc := service.New(&cfg, store, store, store)
		handler := web.New(svc)

		router := web.NewRouter(logger)
		handler.Mount(router)
		wellknown.Mount(svc, router)

		s := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			log.Info().Uint16("port", cfg.Port).Str("url", cfg.Url.String()).Str("domain", cfg.Domain).Msg("started server")
			errc <- s.ListenAndServe()
		}()

		select {
		case err = <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations to the SQLite store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.ReadConfig(configPath)
		if err != nil {
			return err
		}
		web.SetupLogger(cfg.Debug)

		return initialization.Migrate(&cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the configuration file (default ./config.toml)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}
