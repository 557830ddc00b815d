package di

import (
	"context"
	"fmt"
	"os"
	"time"

	"TrafficLight/internal/domain/repository"
	"TrafficLight/internal/handler/api"
	internalrepo "TrafficLight/internal/repository"
	"TrafficLight/internal/service/identity"
	"TrafficLight/internal/service/indicator"
	"TrafficLight/internal/service/trafficlight"
	"TrafficLight/internal/usecase"
	"TrafficLight/pkg/cache"
	pkgch "TrafficLight/pkg/clickhouse"
	"TrafficLight/pkg/config"
	xhttp "TrafficLight/pkg/http"
	pkgkafka "TrafficLight/pkg/kafka"
	applogger "TrafficLight/pkg/logger"
	"TrafficLight/pkg/metrics"
	"TrafficLight/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ProvideKafkaProducer creates a Kafka producer, or nil when the event stream is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(cfg.Kafka.Options()...)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger creates the application logger. Error lines are aggregated
// into the Kafka log topic when error_log is enabled and Kafka is configured.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.ErrorLog.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.ErrorLog.Interval,
			CountThreshold: cfg.ErrorLog.Threshold,
			Topic:          cfg.Kafka.LogTopic,
			Publisher:      producer,
		})
	}
	return l, nil
}

// ProvideRegistry creates the Prometheus registry backing /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.NewWithRegistry(reg)
}

func ProvideClock() repository.Clock {
	return usecase.SystemClock{}
}

// ProvideSession creates the client-credentials session.
func ProvideSession(cfg *config.Config, m repository.Metrics, l *applogger.Logger) repository.SessionManager {
	log := l.With("identity")
	if cfg.Identity.ClientID == "" || cfg.Identity.ClientSecret == "" {
		log.Warn("client credentials missing; token requests will fail")
	}
	return identity.New(
		cfg.Identity.TokenURL,
		cfg.Identity.ClientID,
		cfg.Identity.ClientSecret,
		m,
		log,
		identity.WithScopes(cfg.Identity.Scopes...),
		identity.WithTimeout(cfg.Identity.Timeout),
	)
}

// ProvideFetcher creates the TrafficLight data client.
func ProvideFetcher(
	cfg *config.Config,
	session repository.SessionManager,
	clock repository.Clock,
	m repository.Metrics,
	l *applogger.Logger,
) repository.SignalFetcher {
	httpClient := xhttp.NewClient(
		xhttp.WithTimeout(cfg.Feed.Timeout),
		xhttp.WithUserAgent(cfg.Feed.UserAgent),
	)
	return trafficlight.New(cfg.Feed.BaseURL, session, clock, m, l.With("fetcher"),
		trafficlight.WithWindow(cfg.Feed.Window),
		trafficlight.WithHTTPClient(httpClient),
	)
}

// ProvideIndicator opens the configured indicator driver.
func ProvideIndicator(cfg *config.Config, l *applogger.Logger) (indicator.Driver, error) {
	pins := indicator.PinConfig{
		Blue:   cfg.Indicator.Pins.Blue,
		Green:  cfg.Indicator.Pins.Green,
		Yellow: cfg.Indicator.Pins.Yellow,
		Red:    cfg.Indicator.Pins.Red,
		Buzzer: cfg.Indicator.Pins.Buzzer,
	}
	d, err := indicator.Open(cfg.Indicator.Driver, pins, l.With("indicator"),
		indicator.WithBlinkInterval(cfg.Indicator.BlinkInterval),
		indicator.WithToneDuration(cfg.Indicator.ToneDuration),
	)
	if err != nil {
		return nil, fmt.Errorf("indicator: %w", err)
	}
	return d, nil
}

// ProvideCache creates the status snapshot cache backend.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return c, nil
}

// ProvideStatusStore creates the snapshot store read by the status API.
func ProvideStatusStore(c cache.Service, cfg *config.Config) repository.StatusStore {
	return internalrepo.NewCacheStatusStore(c, cfg.Cache.TTL)
}

// ProvideEventPublisher publishes transitions to Kafka, or returns nil when disabled.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.EventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the audit table is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(cfg.ClickHouse.Options()...)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideObservationStorage creates the audit table and its writer.
func ProvideObservationStorage(client *pkgch.Client, cfg *config.Config) (repository.ObservationStorage, error) {
	if client == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseObservationStorage(client.DB(), cfg.ClickHouse.Table)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideReporter fans loop output out to the configured sinks.
func ProvideReporter(
	status repository.StatusStore,
	events repository.EventPublisher,
	audit repository.ObservationStorage,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Reporter {
	return usecase.NewReporter(status, events, audit, m, l.With("reporter"))
}

// ProvideReconciler creates the reconciliation loop.
func ProvideReconciler(
	cfg *config.Config,
	fetcher repository.SignalFetcher,
	ind indicator.Driver,
	clock repository.Clock,
	m repository.Metrics,
	reporter *usecase.Reporter,
	l *applogger.Logger,
) *usecase.Reconciler {
	opts := []usecase.ReconcilerOption{
		usecase.WithPollInterval(cfg.Loop.PollInterval),
		usecase.WithSettleHold(cfg.Loop.SettleHold),
		usecase.WithStaleAfter(cfg.Loop.StaleAfter),
		usecase.WithLocation(cfg.Location()),
		usecase.WithReporter(reporter),
	}
	if cfg.Loop.Countdown {
		opts = append(opts, usecase.WithProgress(usecase.Countdown(os.Stdout)))
	}
	return usecase.NewReconciler(fetcher, ind, clock, m, l.With("loop"), opts...)
}

// ProvideHTTPServer creates the status server, or nil when disabled.
func ProvideHTTPServer(
	cfg *config.Config,
	status repository.StatusStore,
	reg *prometheus.Registry,
	l *applogger.Logger,
) *xhttp.Server {
	if !cfg.Server.Enabled {
		return nil
	}
	log := l.With("http")
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(log),
	}
	if cfg.Metrics.Enabled {
		// the Kafka producer registers on the default registry
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path, reg, prometheus.Gatherers{reg, prometheus.DefaultGatherer}))
	}
	handler := api.NewStatusEchoHandler(log, status, cfg.Location())
	return xhttp.NewServer(handler, opts...)
}

// ProvideApp creates the application and registers everything it must release on shutdown.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	rec *usecase.Reconciler,
	srv *xhttp.Server,
	ind indicator.Driver,
	c cache.Service,
	producer *pkgkafka.Producer,
	audit repository.ObservationStorage,
) *server.App {
	app := server.New(cfg, l, rec)
	if srv != nil {
		app.SetHTTPServer(srv)
	}

	// closed in reverse order: indicator first, the log sink last
	if producer != nil {
		app.OnClose("kafka", producer.Close)
		app.OnClose("error log", func() error { l.RemoveCollector(); return nil })
	}
	if audit != nil {
		app.OnClose("clickhouse", audit.Close)
	}
	app.OnClose("cache", c.Close)
	app.OnClose("indicator", ind.Close)
	return app
}
