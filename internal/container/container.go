package container

import (
	"errors"
	"fmt"
	"net/http"

	"go-content-inspector/internal/analyzer"
	"go-content-inspector/internal/config"
	"go-content-inspector/internal/factory"
	"go-content-inspector/internal/llm"
	"go-content-inspector/internal/logger"
	"go-content-inspector/internal/observer"
	"go-content-inspector/internal/repository"
	"go-content-inspector/internal/service"
	"go-content-inspector/internal/storage"
	"go-content-inspector/internal/transport"
)

// persistence is what the services need from the database.
type persistence interface {
	repository.AnalysisRepository
	repository.UploadRepository
}

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	fetcher         storage.ResourceFetcher
	model           llm.Model
	store           storage.ObjectStore
	repo            persistence
	events          *observer.EventPublisher
	metrics         *observer.MetricsObserver
	analysisService service.AnalysisService
	uploadService   service.UploadService
	chatService     service.ChatService
	handler         http.Handler
	closers         []func() error
}

// NewContainer creates a new dependency injection container. Storage and
// database failures degrade the service instead of aborting startup.
func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{config: cfg}

	c.fetcher = storage.NewHTTPResourceFetcher(storage.FetcherOptions{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout,
		MaxBytes:  cfg.Fetch.MaxBytes,
	})
	c.model = llm.NewOpenAIModel(llm.OpenAIOptions{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		VisionModel: cfg.OpenAI.VisionModel,
	})

	c.buildPersistence()
	c.buildObjectStore()
	c.buildObservers()

	opts := analyzer.SummarizationOptions{
		ChunkSize:       cfg.Summarization.ChunkSize,
		ReduceThreshold: cfg.Summarization.ReduceThreshold,
		TextByteBudget:  cfg.Summarization.TextByteBudget,
		MapWorkers:      cfg.Summarization.MapWorkers,
		ReduceText:      cfg.Summarization.ReduceText,
		Temperature:     cfg.OpenAI.Temperature,
	}
	registry, err := factory.NewAnalyzerFactory(c.model, c.fetcher, nil, opts).BuildRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build analyzers: %w", err)
	}

	c.analysisService = service.NewAnalysisService(c.fetcher, registry, c.repo, c.events, cfg.Database.ProbeTimeout)
	c.uploadService = service.NewUploadService(c.store, c.repo, c.repo, service.UploadOptions{
		PresignTTL:   cfg.Storage.PresignTTL,
		ProbeTimeout: cfg.Database.ProbeTimeout,
	})
	c.chatService = service.NewChatService(c.model, cfg.OpenAI.Temperature)

	c.handler = transport.NewHandler(transport.Services{
		Analysis: c.analysisService,
		Uploads:  c.uploadService,
		Chat:     c.chatService,
		Metrics:  c.metrics,
	}, transport.Options{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		MaxUploadSize:      cfg.MaxUploadSize,
	})

	return c, nil
}

func (c *Container) buildPersistence() {
	if c.config.Database.Path == "" {
		c.repo = repository.UnavailableRepository{Reason: errors.New("database path not configured")}
		return
	}

	repo, err := repository.NewSQLiteRepository(c.config.Database.Path)
	if err != nil {
		logger.WithError(err).WithField("path", c.config.Database.Path).
			Warn("Database unavailable, analysis results will not be persisted")
		c.repo = repository.UnavailableRepository{Reason: err}
		return
	}
	c.repo = repo
	c.closers = append(c.closers, repo.Close)
}

func (c *Container) buildObjectStore() {
	if !c.config.Storage.Enabled() {
		logger.Info("Object storage not configured, uploads are disabled")
		return
	}

	store, err := storage.NewAzureBlobStore(storage.AzureBlobOptions{
		AccountName: c.config.Storage.AccountName,
		AccountKey:  c.config.Storage.AccountKey,
		ServiceURL:  c.config.Storage.ServiceURL,
		Container:   c.config.Storage.Container,
	})
	if err != nil {
		logger.WithError(err).Warn("Object storage unavailable, uploads are disabled")
		return
	}
	c.store = store
}

func (c *Container) buildObservers() {
	c.events = observer.NewEventPublisher()
	c.metrics = observer.NewMetricsObserver()
	c.events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	c.events.Subscribe(c.metrics)

	if len(c.config.Kafka.Brokers) > 0 {
		kafkaObserver := observer.NewKafkaObserver(c.config.Kafka.Brokers, c.config.Kafka.Topic, logger.Logger)
		c.events.Subscribe(kafkaObserver)
		c.closers = append(c.closers, kafkaObserver.Close)
	}
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases the database and flushes pending events.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
