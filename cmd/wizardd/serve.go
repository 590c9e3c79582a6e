package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ctateo21/homelead/internal/app"
	"github.com/ctateo21/homelead/internal/application/usecase"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/service"
	"github.com/ctateo21/homelead/internal/infrastructure/adapter"
	"github.com/ctateo21/homelead/internal/infrastructure/config"
	"github.com/ctateo21/homelead/internal/infrastructure/kafka"
	"github.com/ctateo21/homelead/internal/infrastructure/messaging"
	badgerstore "github.com/ctateo21/homelead/internal/infrastructure/persistence/badger"
	"github.com/ctateo21/homelead/internal/infrastructure/persistence/memory"
	pgrepo "github.com/ctateo21/homelead/internal/infrastructure/persistence/postgres"
	"github.com/ctateo21/homelead/internal/infrastructure/writer"
	grpcPresentation "github.com/ctateo21/homelead/internal/presentation/grpc"
	"github.com/ctateo21/homelead/internal/presentation/rest"
	pkgkafka "github.com/ctateo21/homelead/pkg/kafka"
	"github.com/ctateo21/homelead/pkg/observability"
	"github.com/ctateo21/homelead/pkg/openbanking"
	pgpkg "github.com/ctateo21/homelead/pkg/postgres"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC and REST servers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := observability.InitLogger(cfg.Logging())
	slog.SetDefault(logger)

	logger.Info("starting wizard service",
		"grpc_addr", cfg.GRPCAddr(),
		"http_addr", cfg.HTTPAddr(),
		"store", cfg.Store.Backend,
		"kafka", cfg.Kafka.Enabled,
	)

	// Tracing and metrics.
	shutdownTracer, err := observability.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	mp, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return err
	}
	metrics, err := observability.NewWizardMetrics(mp)
	if err != nil {
		return err
	}

	calcCfg, err := cfg.CalculatorConfig()
	if err != nil {
		return err
	}
	seq := service.NewSequencer()
	calc := service.NewCalculator(calcCfg)

	// Persistence.
	repo, checks, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	store := memory.NewSessionStore(repo, seq, logger)
	feedback := usecase.NewPersistenceFeedbackUseCase(store, publisher, metrics, logger)
	stepWriter := writer.New(repo, feedback, writer.Config{
		Workers:     cfg.Writer.Workers,
		QueueSize:   cfg.Writer.QueueSize,
		MaxRetries:  cfg.Writer.MaxRetries,
		BaseBackoff: cfg.Writer.BaseBackoff,
	}, logger)
	defer func() {
		if err := stepWriter.Close(); err != nil {
			logger.Error("step writer close", "error", err)
		}
	}()

	// Use cases.
	uc, err := app.New(app.Ports{
		Store:       store,
		Writer:      stepWriter,
		Publisher:   publisher,
		Address:     newAddressLookup(cfg),
		Valuation:   adapter.NewZillowSimulator(),
		ZipAverages: adapter.NewZipAverageTable(),
		Income:      adapter.NewSimulatedIncomeVerifier(),
		Liabilities: adapter.NewPlaidAdapter(nil, openbanking.DefaultPlaidConfig()),
		Tax:         adapter.NewHillsboroughTaxEstimator(calcCfg),
	}, seq, calc, metrics, logger)
	if err != nil {
		return err
	}

	// gRPC server.
	grpcHandler := grpcPresentation.NewWizardHandler(uc.Submit, uc.Draft, uc.Back, uc.Get, uc.Profile, uc.Verify, logger)
	grpcServer, err := grpcPresentation.NewServer(grpcHandler, grpcPresentation.ServerOptions{
		TLS:        cfg.TLSFiles(),
		Reflection: cfg.GRPC.Reflection,
		HealthName: cfg.ServiceName,
	}, logger)
	if err != nil {
		return err
	}

	// HTTP server.
	router := rest.NewRouter(
		rest.NewWizardHandler(uc, logger),
		rest.NewHealthHandler(cfg.ServiceName, checks, logger),
		rest.RouterOptions{
			CORSOrigins: cfg.HTTP.CORSOrigins,
			RateRPS:     cfg.HTTP.RateRPS,
			RateBurst:   cfg.HTTP.RateBurst,
			Metrics:     metricsHandler,
		},
		logger,
	)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return grpcServer.Serve(cfg.GRPCAddr())
	})
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("wizard service stopped")
	return nil
}

// openRepository opens the configured step store and returns its readiness
// checks and a close function.
func openRepository(ctx context.Context, cfg *config.Config) (port.StepRepository, map[string]rest.ReadinessCheck, func(), error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pool, err := pgpkg.NewPool(dbCtx, cfg.Postgres())
		if err != nil {
			return nil, nil, nil, err
		}
		checks := map[string]rest.ReadinessCheck{
			"postgres": func(ctx context.Context) error { return pgpkg.HealthCheck(ctx, pool) },
		}
		return pgrepo.NewStepRepo(pool), checks, pool.Close, nil

	case config.StoreBadger:
		repo, err := badgerstore.Open(cfg.Store.BadgerDir)
		if err != nil {
			return nil, nil, nil, err
		}
		return repo, nil, func() { _ = repo.Close() }, nil

	default:
		return memory.NewStepRepo(), nil, func() {}, nil
	}
}

// newPublisher returns the Kafka publisher when enabled, otherwise one that
// only logs.
func newPublisher(cfg *config.Config, logger *slog.Logger) (port.EventPublisher, func()) {
	if !cfg.Kafka.Enabled {
		return messaging.NewLogEventPublisher(logger), func() {}
	}
	producer := pkgkafka.NewProducer(cfg.KafkaClient())
	publisher := kafka.NewEventPublisher(producer, cfg.Kafka.EventsTopic, cfg.Kafka.LeadsTopic, logger)
	return publisher, func() {
		if err := producer.Close(); err != nil {
			logger.Error("kafka producer close", "error", err)
		}
	}
}

func newAddressLookup(cfg *config.Config) port.AddressLookup {
	if cfg.Geocode.BaseURL == "" {
		return adapter.NewStubGeocoder()
	}
	return adapter.NewGeocodeClient(adapter.GeocodeConfig{
		BaseURL:    cfg.Geocode.BaseURL,
		APIKey:     cfg.Geocode.APIKey,
		RPS:        cfg.Geocode.RPS,
		MaxRetries: 2,
	}, nil)
}
