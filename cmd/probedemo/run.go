package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/probes/backend"
	"github.com/jonwraymond/probes/backend/otelbridge"
	"github.com/jonwraymond/probes/health"
	"github.com/jonwraymond/probes/observe"
	"github.com/jonwraymond/probes/registry"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fire the simple_probes provider in a loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd, cfg)
		},
	}

	cmd.Flags().Int("count", 10, "number of iterations, 0 runs until interrupted")
	cmd.Flags().Duration("interval", time.Second, "pause between iterations")
	cmd.Flags().Bool("init", false, "initialize the provider up front and report its error")
	cmd.Flags().Bool("otel", false, "export fires through OpenTelemetry to stdout instead of USDT")
	cmd.Flags().String("health-addr", "", "serve /healthz, /readyz and /health on this address")
	return cmd
}

func observerConfig(cmd *cobra.Command, cfg config) observe.Config {
	exporter := "none"
	if cfg.OTel {
		exporter = "stdout"
	}
	return observe.Config{
		ServiceName: "probedemo",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: exporter, SamplePct: 1},
		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: exporter},
		Logging:     observe.LoggingConfig{Enabled: true, Level: cfg.LogLevel},
		Output:      cmd.OutOrStdout(),
		LogOutput:   cmd.ErrOrStderr(),
	}
}

func run(ctx context.Context, cmd *cobra.Command, cfg config) (err error) {
	obs, err := observe.NewObserver(ctx, observerConfig(cmd, cfg))
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = errors.Join(err, obs.Shutdown(shutdownCtx))
	}()
	log := obs.Logger()

	var b backend.Backend = backend.System()
	var bridge *otelbridge.Backend
	if cfg.OTel {
		// NewObserver installed the global providers the bridge defaults to.
		if bridge, err = otelbridge.New(); err != nil {
			return err
		}
		b = bridge
	}

	probes := newSimpleProbes(registry.WithBackend(b), registry.WithObserver(obs))

	if cfg.Init || cfg.OTel {
		if err := probes.Init(); err != nil {
			log.Warn(ctx, "probes disabled", observe.Field{Key: "error", Value: err})
		}
	}
	if bridge != nil {
		bridge.EnableAll()
	}

	g, ctx := errgroup.WithContext(ctx)
	loopDone := make(chan struct{})

	if cfg.HealthAddr != "" {
		agg := health.NewAggregator()
		agg.Register("backend", health.NewBackendChecker(b))
		registry.RegisterHealth(agg)

		mux := http.NewServeMux()
		health.RegisterHandlers(mux, agg)
		srv := &http.Server{Addr: cfg.HealthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		ln, err := net.Listen("tcp", cfg.HealthAddr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.HealthAddr, err)
		}
		log.Info(ctx, "serving health", observe.Field{Key: "addr", Value: ln.Addr().String()})

		g.Go(func() error {
			if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-ctx.Done():
			case <-loopDone:
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer close(loopDone)
		return fireLoop(ctx, probes, cfg)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func fireLoop(ctx context.Context, probes *simpleProbes, cfg config) error {
	ticker := time.NewTicker(max(cfg.Interval, time.Millisecond))
	defer ticker.Stop()

	for i := 0; cfg.Count == 0 || i < cfg.Count; i++ {
		name := "world " + strconv.Itoa(i)

		probes.Hello(name)
		probes.Greeting("hi", name)
		if i%2 == 0 {
			probes.OptionalGreeting("hello", &name)
		} else {
			probes.OptionalGreeting("hello", nil)
		}

		if cfg.Count != 0 && i == cfg.Count-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
