package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/offlinefirst/screenshotter/pkg/control"
	"github.com/offlinefirst/screenshotter/pkg/gui"
	"github.com/offlinefirst/screenshotter/pkg/metrics"
)

const appID = "io.offlinefirst.screenshotter"

type runOptions struct {
	headless    bool
	autostart   bool
	metricsAddr string
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	var ro runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the control window (or a headless loop) with both capture timers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.appContext()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, app, ro, opts.stdout)
		},
	}
	cmd.Flags().BoolVar(&ro.headless, "headless", false, "Run without a window until interrupted, printing status lines")
	cmd.Flags().BoolVar(&ro.autostart, "autostart", false, "Start automatic interval screenshots immediately")
	cmd.Flags().StringVar(&ro.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. 127.0.0.1:9310)")
	return cmd
}

func serve(ctx context.Context, app *AppContext, ro runOptions, stdout io.Writer) error {
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if ro.metricsAddr != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		shutdown, err := serveMetrics(ro.metricsAddr, reg, app)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	svc, err := control.New(control.Options{
		Store:       app.Store,
		Logger:      app.Logger,
		Recorder:    recorder,
		WatchConfig: true,
	})
	if err != nil {
		return err
	}
	if err := svc.Open(ctx); err != nil {
		svc.Close()
		return err
	}
	app.Logger.Info("screenshotter running",
		"headless", ro.headless,
		"interval_seconds", app.Store.Current().IntervalSeconds,
		"specific_time", svc.DailyAt(),
		"save_path", app.Store.Current().SavePath)

	if ro.headless {
		unsubscribe := svc.Subscribe(func(s control.Status) {
			fmt.Fprintln(stdout, s.Message)
		})
		defer unsubscribe()
		if ro.autostart {
			svc.Start()
		}
		<-ctx.Done()
		return svc.Close()
	}

	a := fyneapp.NewWithID(appID)
	ui := gui.New(ctx, a, svc, app.Logger.With("component", "gui"))
	if ro.autostart {
		svc.Start()
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(ui.Exit)
		case <-done:
		}
	}()
	ui.Run()
	close(done)
	return svc.Close()
}

func serveMetrics(addr string, reg *prom.Registry, app *AppContext) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("metrics server stopped", "error", err)
		}
	}()
	app.Logger.Info("serving metrics", "addr", ln.Addr().String())
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, nil
}
