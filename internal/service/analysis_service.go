package service

import (
	"context"
	"time"

	"go-content-inspector/internal/analyzer"
	"go-content-inspector/internal/content"
	apperrors "go-content-inspector/internal/errors"
	"go-content-inspector/internal/logger"
	"go-content-inspector/internal/observer"
	"go-content-inspector/internal/repository"
	"go-content-inspector/internal/strategy"
	"go-content-inspector/pkg/models"
	"go-content-inspector/pkg/validation"

	"github.com/sirupsen/logrus"
)

// UnreadableHeaderMessage is returned when a URL's headers cannot be fetched.
const UnreadableHeaderMessage = "Unable to fetch header"

// HeaderFetcher probes the declared media type of a URL.
type HeaderFetcher interface {
	FetchHeader(ctx context.Context, url string) (string, error)
}

// AnalysisService runs the classify, analyze and persist pipeline for one URL.
type AnalysisService interface {
	Analyze(ctx context.Context, url string) (*Outcome, error)
}

// Outcome is a completed analysis. Persisted is false when the result
// could not be stored; the analysis text is returned either way.
type Outcome struct {
	Result    models.AnalysisResult
	Kind      content.Kind
	Persisted bool
}

type analysisService struct {
	validator    *validation.URLValidator
	fetcher      HeaderFetcher
	registry     *strategy.Registry
	repo         repository.AnalysisRepository
	events       observer.Subject
	probeTimeout time.Duration
}

// NewAnalysisService creates the analysis pipeline. A nil events subject
// disables event publication.
func NewAnalysisService(
	fetcher HeaderFetcher,
	registry *strategy.Registry,
	repo repository.AnalysisRepository,
	events observer.Subject,
	probeTimeout time.Duration,
) AnalysisService {
	if events == nil {
		events = observer.NewEventPublisher()
	}
	return &analysisService{
		validator:    validation.NewURLValidator(),
		fetcher:      fetcher,
		registry:     registry,
		repo:         repo,
		events:       events,
		probeTimeout: probeTimeout,
	}
}

func (s *analysisService) Analyze(ctx context.Context, url string) (*Outcome, error) {
	start := time.Now()
	s.publish(ctx, observer.AnalysisEvent{EventType: observer.AnalysisReceived, URL: url, Success: true})

	kind, mediaType, err := s.classify(ctx, url)
	if err != nil {
		return nil, s.fail(ctx, url, "", start, err)
	}
	s.publish(ctx, observer.AnalysisEvent{
		EventType:   observer.AnalysisClassified,
		URL:         url,
		ContentKind: string(kind),
		Success:     true,
		Metadata:    map[string]interface{}{"media_type": mediaType},
	})

	text, err := s.registry.Execute(ctx, kind, analyzer.Resource{URL: url, MediaType: mediaType})
	if err != nil {
		if _, ok := apperrors.As(err); !ok {
			err = apperrors.NewInternalError("analysis failed", err)
		}
		return nil, s.fail(ctx, url, kind, start, err)
	}
	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisAnalyzed,
		URL:            url,
		ContentKind:    string(kind),
		ProcessingTime: time.Since(start),
		Success:        true,
	})

	outcome := &Outcome{
		Result: models.AnalysisResult{
			SourceURL:    url,
			AnalysisText: text,
			CreatedAt:    time.Now().UTC(),
		},
		Kind: kind,
	}
	outcome.Persisted = s.persist(ctx, &outcome.Result, kind)

	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		URL:            url,
		ContentKind:    string(kind),
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"persisted": outcome.Persisted},
	})
	return outcome, nil
}

// classify validates the URL and maps its declared media type to a kind.
func (s *analysisService) classify(ctx context.Context, url string) (content.Kind, string, error) {
	if err := s.validator.ValidateURL(url); err != nil {
		return "", "", err
	}

	header, err := s.fetcher.FetchHeader(ctx, url)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
			return "", "", err
		}
		return "", "", apperrors.NewInvalidInputError(UnreadableHeaderMessage, err)
	}

	mediaType := content.MediaType(header)
	if mediaType == "" {
		return "", "", apperrors.NewInvalidInputError("content type missing", nil)
	}
	return content.Classify(mediaType), mediaType, nil
}

// persist stores result when the repository answers a probe. Failures are
// logged and reported as not persisted.
func (s *analysisService) persist(ctx context.Context, result *models.AnalysisResult, kind content.Kind) bool {
	if !repository.Reachable(ctx, s.repo, s.probeTimeout) {
		s.publish(ctx, observer.AnalysisEvent{
			EventType:   observer.AnalysisPersistSkipped,
			URL:         result.SourceURL,
			ContentKind: string(kind),
			Metadata:    map[string]interface{}{"reason": "repository unreachable"},
		})
		return false
	}

	if err := s.repo.SaveAnalysisResult(ctx, result); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"url": result.SourceURL,
		}).Warn("Failed to persist analysis result")
		s.publish(ctx, observer.AnalysisEvent{
			EventType:    observer.AnalysisPersistSkipped,
			URL:          result.SourceURL,
			ContentKind:  string(kind),
			ErrorMessage: err.Error(),
			Metadata:     map[string]interface{}{"reason": "insert failed"},
		})
		return false
	}

	s.publish(ctx, observer.AnalysisEvent{
		EventType:   observer.AnalysisPersisted,
		URL:         result.SourceURL,
		ContentKind: string(kind),
		Success:     true,
	})
	return true
}

func (s *analysisService) fail(ctx context.Context, url string, kind content.Kind, start time.Time, err error) error {
	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisFailed,
		URL:            url,
		ContentKind:    string(kind),
		ProcessingTime: time.Since(start),
		ErrorType:      string(apperrors.TypeOf(err)),
		ErrorMessage:   err.Error(),
	})
	return err
}

func (s *analysisService) publish(ctx context.Context, event observer.AnalysisEvent) {
	s.events.NotifyObservers(ctx, event)
}
