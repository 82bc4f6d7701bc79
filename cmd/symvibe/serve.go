package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sqlvibe/symvibe/internal/SF/errors"
	"github.com/sqlvibe/symvibe/internal/log"
	"github.com/sqlvibe/symvibe/pkg/symvibe"
	"github.com/sqlvibe/symvibe/pkg/symvibe/metrics"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [files...]",
		Short: "Intern the given files and serve registry metrics",
		Long: `Intern the strings of the given files (none is fine) and serve the
registry statistics on /metrics in the Prometheus text format until
interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.newRegistry()
			if err != nil {
				return err
			}
			if len(args) > 0 {
				lines, err := readInputs(cmd.InOrStdin(), args)
				if err != nil {
					return err
				}
				if _, err := reg.InternBulk(lines); err != nil {
					return err
				}
				log.Info("serve: interned %d lines, %d distinct", len(lines), reg.Len())
			}

			ln, err := net.Listen("tcp", a.cfg.Serve.Addr)
			if err != nil {
				return errors.Wrap(errors.SVDB_ERROR, err, "listen on "+a.cfg.Serve.Addr)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serveMetrics(ctx, ln, reg)
		},
	}

	cmd.Flags().String("addr", ":9464", "listen address for /metrics")
	_ = a.v.BindPFlag("serve.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

// newMetricsHandler exposes reg together with the Go runtime collectors.
func newMetricsHandler(reg *symvibe.Registry) (http.Handler, error) {
	preg := prometheus.NewRegistry()
	if _, err := metrics.Register(preg, reg, nil); err != nil {
		return nil, errors.Wrap(errors.SVDB_INTERNAL, err, "register registry collector")
	}
	if err := preg.Register(collectors.NewGoCollector()); err != nil {
		return nil, errors.Wrap(errors.SVDB_INTERNAL, err, "register go collector")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(preg, promhttp.HandlerOpts{}))
	return mux, nil
}

// serveMetrics serves on ln until ctx is done, then shuts the server down.
func serveMetrics(ctx context.Context, ln net.Listener, reg *symvibe.Registry) error {
	handler, err := newMetricsHandler(reg)
	if err != nil {
		ln.Close()
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("serve: metrics on http://%s/metrics", ln.Addr())
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(errors.SVDB_ERROR, err, "serve metrics")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("serve: shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
