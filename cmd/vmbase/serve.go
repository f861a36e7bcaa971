package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/vmbase/internal/demo"
	vmerrors "github.com/vango-dev/vmbase/internal/errors"
	"github.com/vango-dev/vmbase/pkg/diag"
)

func serveCmd(a *app) *cobra.Command {
	var (
		addr      string
		workers   int
		interval  time.Duration
		stopAfter time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve live view model diagnostics",
		Long: `Start a diagnostics server over a live demo workload.

Routes:
  GET /         text dump of live view models
  GET /types    live count per type
  GET /nodes    live view models as JSON (?type= filters)
  GET /stream   creation and disposal events over WebSocket
  GET /metrics  Prometheus metrics

Examples:
  vmbase serve
  vmbase serve --addr=:7070 --workers=4
  VMBASE_DIAG_CAPTURE_STACKS=true vmbase serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Diagnostics.Addr = addr
			}
			if !a.cfg.Diagnostics.Enabled {
				return vmerrors.New("E122").
					WithDetail("diagnostics are disabled").
					WithSuggestion("Set diagnostics.enabled or VMBASE_DIAG_ENABLED=true")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if stopAfter > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, stopAfter)
				defer cancel()
			}
			return a.serve(ctx, cmd, workers, interval)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 2, "Number of concurrent demo workloads")
	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "Delay between workload steps")
	cmd.Flags().DurationVar(&stopAfter, "stop-after", 0, "Shut down after this duration (0 runs until interrupted)")

	return cmd
}

func (a *app) serve(ctx context.Context, cmd *cobra.Command, workers int, interval time.Duration) error {
	out := cmd.OutOrStdout()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	reg, env := a.registry(diag.WithMetrics(promReg, a.cfg.Diagnostics.MetricsNamespace))

	srv := &http.Server{
		Handler: diag.NewHandler(reg,
			diag.WithGatherer(promReg),
			diag.WithHandlerLogger(a.logger.With("component", "diag")),
		),
		ReadHeaderTimeout: 5 * time.Second,
	}
	ln, err := net.Listen("tcp", a.cfg.Diagnostics.Addr)
	if err != nil {
		return err
	}

	printBanner(out)
	success(out, "Diagnostics on http://%s", ln.Addr())
	info(out, "%d workload(s), step every %s", workers, interval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return demo.RunWorkload(gctx, env, interval)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		info(out, "Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if n := reg.Count(); n > 0 {
		warn(out, "%d view model(s) leaked", n)
	}
	return nil
}
