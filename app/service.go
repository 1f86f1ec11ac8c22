// Package app wires the load-once resources, the prediction cycle and the
// HTTP surfaces into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kilianp07/evrange/api/form"
	"github.com/kilianp07/evrange/api/mid"
	"github.com/kilianp07/evrange/api/predict"
	_ "github.com/kilianp07/evrange/app/plugins"
	"github.com/kilianp07/evrange/config"
	"github.com/kilianp07/evrange/core/catalog"
	"github.com/kilianp07/evrange/core/dataset"
	"github.com/kilianp07/evrange/core/events"
	coremetrics "github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/core/model"
	coremon "github.com/kilianp07/evrange/core/monitoring"
	"github.com/kilianp07/evrange/core/prediction"
	"github.com/kilianp07/evrange/infra/logger"
	"github.com/kilianp07/evrange/infra/metrics"
	"github.com/kilianp07/evrange/infra/monitoring"
	"github.com/kilianp07/evrange/internal/eventbus"
)

// LoadCatalog reads the reference dataset and derives the option catalog.
func LoadCatalog(ctx context.Context, cfg config.Config) (*catalog.Catalog, error) {
	src, err := dataset.NewSource(cfg.Dataset)
	if err != nil {
		return nil, fmt.Errorf("dataset source: %w", err)
	}
	tbl, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	cat, err := catalog.Build(tbl)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return cat, nil
}

// LoadPredictor reads the predictor artifact.
func LoadPredictor(cfg config.Config) (prediction.Predictor, error) {
	p, err := prediction.NewPredictor(cfg.Predictor)
	if err != nil {
		return nil, fmt.Errorf("load predictor: %w", err)
	}
	return p, nil
}

// Service holds the process lifetime resources.
type Service struct {
	Catalog *catalog.Catalog
	Cycle   *prediction.Cycle

	cfg       config.Config
	handler   http.Handler
	bus       *eventbus.TypedBus[events.PredictionEvent]
	sink      coremetrics.MetricsSink
	monitor   coremon.Monitor
	log       logger.Logger
	logCloser io.Closer
	stop      context.CancelFunc
	collected <-chan struct{}
}

// New loads the dataset and predictor and builds the HTTP handler. Any
// failure aborts startup.
func New(cfg *config.Config) (*Service, error) {
	closer, err := logger.Configure(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	log := logger.New("service")

	ctx := context.Background()
	cat, err := LoadCatalog(ctx, *cfg)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	p, err := LoadPredictor(*cfg)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("sentry: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	if rec, ok := sink.(coremetrics.CatalogRecorder); ok {
		if err := rec.RecordCatalog(cat.All()); err != nil {
			log.Warnf("record catalog: %v", err)
		}
	}

	bus := eventbus.NewTyped[events.PredictionEvent]()
	cycle, err := prediction.NewCycle(p,
		prediction.WithEventBus(bus),
		prediction.WithLogger(logger.New("prediction")),
		prediction.WithMonitor(mon),
	)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	collectCtx, stop := context.WithCancel(context.Background())
	done := metrics.StartEventCollector(collectCtx, bus, sink, logger.New("metrics"))

	s := &Service{
		Catalog:   cat,
		Cycle:     cycle,
		cfg:       *cfg,
		bus:       bus,
		sink:      sink,
		monitor:   mon,
		log:       log,
		logCloser: closer,
		stop:      stop,
		collected: done,
	}
	s.handler = s.routes()
	sizes := cat.Sizes()
	log.Infof("loaded %s predictor %q with %d makes and %d models",
		cfg.Predictor.Type, p.Name(), sizes[model.FieldMake], sizes[model.FieldModel])
	return s, nil
}

// Handler returns the root HTTP handler with middleware applied.
func (s *Service) Handler() http.Handler { return s.handler }

func (s *Service) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", form.NewHandler(s.Catalog, s.Cycle, logger.New("form")))
	mux.Handle("/api/options", predict.NewOptionsHandler(s.Catalog))
	mux.Handle("/api/predict", predict.NewPredictHandler(s.Catalog, s.Cycle))
	mux.Handle("/api/predict/sweep", predict.NewSweepHandler(s.Catalog, s.Cycle))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.cfg.Metrics.Has("prometheus") {
		mux.Handle("/metrics", metrics.Handler())
	}
	httpLog := logger.New("http")
	return mid.Chain(mux,
		mid.OTel(s.cfg.Server.ServiceName),
		mid.Recover(httpLog, s.monitor),
		mid.Logger(httpLog),
		mid.RateLimit(s.cfg.Server.RateLimit.RPS, s.cfg.Server.RateLimit.Burst),
	)
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Address,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout(),
		WriteTimeout: s.cfg.Server.WriteTimeout(),
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close stops the metrics collector and releases the sinks, the monitor and
// the log file.
func (s *Service) Close() error {
	s.bus.Close()
	<-s.collected
	s.stop()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	s.monitor.Flush(2 * time.Second)
	return s.logCloser.Close()
}
