package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/stepwise"
	httpAdapter "github.com/aretw0/stepwise/internal/adapters/http"
	redisAdapter "github.com/aretw0/stepwise/internal/adapters/redis"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/internal/metrics"
	"github.com/aretw0/stepwise/internal/presentation/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	Long:  `Starts the stepwise engine in server mode, exposing a JSON API over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.Addr = addr
		}

		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		log := logging.New(level)

		collector := metrics.NewPrometheus()
		eng, err := stepwise.New(
			stepwise.WithLogger(log),
			stepwise.WithMaxSteps(cfg.MaxSteps),
			stepwise.WithMetrics(collector),
		)
		if err != nil {
			return err
		}

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(log),
			httpAdapter.WithMetricsHandler(collector.Handler()),
			httpAdapter.WithTimeout(cfg.Timeout),
		}
		if cfg.Redis.Addr != "" {
			store := redisAdapter.New(cfg.Redis.Addr, "", 0,
				redisAdapter.WithPrefix(cfg.Redis.Prefix),
				redisAdapter.WithTTL(cfg.Redis.TTL),
			)
			defer store.Close()
			opts = append(opts, httpAdapter.WithStore(store))
			log.Info("result store enabled", "addr", cfg.Redis.Addr)
		}

		handler, err := httpAdapter.NewHandler(eng, opts...)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: handler,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		tui.PrintBanner()
		log.Info("server starting", "addr", cfg.HTTP.Addr)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				srv.Close()
				return err
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			return err
		}
		log.Info("server stopped gracefully")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
