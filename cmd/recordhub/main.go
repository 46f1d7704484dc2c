// Command recordhub serves the record collections over HTTP and streams
// change events to websocket subscribers.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"recordhub/internal/adapters/httpapi"
	"recordhub/internal/core"
	"recordhub/internal/events"
	"recordhub/internal/platform/config"
	rhotel "recordhub/internal/platform/otel"
	"recordhub/internal/seed"
)

const serviceName = "recordhub"

var logger = loggo.GetLogger("recordhub")

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "recordhub: %v\n", err)
		os.Exit(2)
	}
	if err := loggo.ConfigureLoggers(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "recordhub: log level %q: %v\n", cfg.LogLevel, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, nil); err != nil {
		logger.Criticalf("%s", errors.Details(err))
		os.Exit(1)
	}
}

// run serves until ctx is done. ready, when set, receives the bound address
// once the listener is open.
func run(ctx context.Context, cfg config.Config, ready func(net.Addr)) error {
	if err := cfg.Validate(); err != nil {
		return errors.Trace(err)
	}
	tp, shutdownTracing, err := rhotel.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warningf("flush traces: %v", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	busMetrics := events.NewMetrics()
	if err := reg.Register(busMetrics); err != nil {
		return errors.Annotate(err, "register bus metrics")
	}
	recorder, err := core.NewPrometheusMetricsRecorder(reg)
	if err != nil {
		return errors.Trace(err)
	}

	bus := events.NewBus(events.WithBuffer(cfg.SubscriptionBuffer), events.WithMetrics(busMetrics))
	defer bus.Close()

	svc := core.NewInMemoryService(bus,
		core.WithLogger(core.NewLoggoLogger(loggo.GetLogger("recordhub.core"))),
		core.WithClock(clock.WallClock),
		core.WithMetricsRecorder(recorder),
		core.WithTracer(core.NewOTelTracer(tp)),
		core.WithAuditRecorder(core.NewLoggoAuditRecorder(loggo.GetLogger("recordhub.audit"))),
	)
	if err := loadSeed(ctx, cfg, svc); err != nil {
		return errors.Trace(err)
	}

	api, err := httpapi.New(httpapi.Config{Service: svc, Bus: bus, Gatherer: reg})
	if err != nil {
		return errors.Trace(err)
	}
	listener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return errors.Annotatef(err, "listen on %s", cfg.HTTPAddr)
	}
	srv := &http.Server{Handler: api, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("listening on %s", listener.Addr())
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return errors.Annotate(err, "serve http")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Infof("shutting down")
		api.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return errors.Annotate(srv.Shutdown(shutdownCtx), "shutdown http")
	})
	if ready != nil {
		ready(listener.Addr())
	}
	return g.Wait()
}

func loadSeed(ctx context.Context, cfg config.Config, svc *core.Service) error {
	src, err := seed.OpenSource(ctx, seed.SourceConfig{
		Driver:      cfg.SeedDriver,
		Root:        cfg.SeedRoot,
		S3Bucket:    cfg.SeedS3Bucket,
		S3Region:    cfg.SeedS3Region,
		S3Endpoint:  cfg.SeedS3Endpoint,
		S3PathStyle: cfg.SeedS3PathStyle,
	})
	if err != nil || src == nil {
		return errors.Trace(err)
	}
	_, err = seed.Load(ctx, src, cfg.SeedKey, svc.Store(), time.Now().UTC())
	if errors.Is(err, errors.NotFound) {
		logger.Warningf("starting empty: %v", err)
		return nil
	}
	return errors.Trace(err)
}
