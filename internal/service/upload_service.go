package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	apperrors "go-content-inspector/internal/errors"
	"go-content-inspector/internal/logger"
	"go-content-inspector/internal/repository"
	"go-content-inspector/internal/storage"
	"go-content-inspector/pkg/models"

	"github.com/sirupsen/logrus"
)

// DefaultPageSize bounds a file listing when the caller gives no size.
const DefaultPageSize int32 = 100

// FileUpload is one file received from a client.
type FileUpload struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// UploadService stores user files and lists what has been stored or analyzed.
type UploadService interface {
	Upload(ctx context.Context, file FileUpload) (string, error)
	ListFiles(ctx context.Context, continuationToken string, maxResults int32) (*models.FileListResponse, error)
	LoadHistory(ctx context.Context, days, limit int) ([]models.UploadRecord, error)
	AnalyzedFiles(ctx context.Context) ([]models.AnalyzedFile, error)
}

// UploadOptions configures UploadService.
type UploadOptions struct {
	PresignTTL   time.Duration
	ProbeTimeout time.Duration
}

type uploadService struct {
	store    storage.ObjectStore
	uploads  repository.UploadRepository
	analyses repository.AnalysisRepository
	opts     UploadOptions
	now      func() time.Time
}

// NewUploadService creates an upload service. A nil store means object
// storage is not configured and every store operation fails with 503.
func NewUploadService(
	store storage.ObjectStore,
	uploads repository.UploadRepository,
	analyses repository.AnalysisRepository,
	opts UploadOptions,
) UploadService {
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = 60 * time.Minute
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 2 * time.Second
	}
	return &uploadService{
		store:    store,
		uploads:  uploads,
		analyses: analyses,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *uploadService) Upload(ctx context.Context, file FileUpload) (string, error) {
	if file.Body == nil || file.Size <= 0 {
		return "", apperrors.NewInvalidInputError("file is empty", nil)
	}
	if s.store == nil {
		return "", apperrors.NewStorageUnavailableError("object storage is not configured", nil)
	}

	reachable := repository.Reachable(ctx, s.uploads, s.opts.ProbeTimeout)
	if reachable {
		existing, err := s.uploads.FindUpload(ctx, file.Name, file.Size)
		switch {
		case err == nil:
			return "", apperrors.NewDuplicateUploadError(
				fmt.Sprintf("File already loaded on %s", existing.LoadTime.Format("2006-01-02")), nil)
		case !errors.Is(err, repository.ErrUploadNotFound):
			logger.WithError(err).WithField("file", file.Name).Warn("Duplicate upload check failed")
		}
	}

	key := storage.NewObjectKey(file.Name)
	if err := s.store.Put(ctx, key, file.Body, file.ContentType); err != nil {
		return "", storeError("failed to store file", err)
	}

	url, err := s.store.Presign(ctx, key, s.opts.PresignTTL)
	if err != nil {
		return "", storeError("failed to presign file URL", err)
	}

	if reachable {
		record := &models.UploadRecord{
			LocalFileName:     file.Name,
			FileLengthInBytes: file.Size,
			StorageKey:        key,
			PresignedURL:      url,
			ContentType:       file.ContentType,
			LoadTime:          s.now(),
		}
		if err := s.uploads.SaveUpload(ctx, record); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"file": file.Name,
				"key":  key,
			}).Warn("Failed to record upload metadata")
		}
	}

	return url, nil
}

func (s *uploadService) ListFiles(ctx context.Context, continuationToken string, maxResults int32) (*models.FileListResponse, error) {
	if s.store == nil {
		return nil, apperrors.NewStorageUnavailableError("object storage is not configured", nil)
	}
	if maxResults < 0 {
		return nil, apperrors.NewInvalidInputError("maxResults must not be negative", nil)
	}
	if maxResults == 0 {
		maxResults = DefaultPageSize
	}

	page, err := s.store.List(ctx, continuationToken, maxResults)
	if err != nil {
		return nil, storeError("failed to list files", err)
	}

	files := make(map[string]string, len(page.Keys))
	for _, key := range page.Keys {
		url, err := s.store.Presign(ctx, key, s.opts.PresignTTL)
		if err != nil {
			return nil, storeError("failed to presign file URL", err)
		}
		files[key] = url
	}

	return &models.FileListResponse{Files: files, NextToken: page.NextToken}, nil
}

func (s *uploadService) LoadHistory(ctx context.Context, days, limit int) ([]models.UploadRecord, error) {
	if days <= 0 || limit <= 0 {
		return nil, apperrors.NewInvalidInputError("days and limit must be positive", nil).
			WithDetails(fmt.Sprintf("days=%d limit=%d", days, limit))
	}
	if !repository.Reachable(ctx, s.uploads, s.opts.ProbeTimeout) {
		return nil, apperrors.NewStorageUnavailableError("upload history is unavailable", nil)
	}

	since := s.now().AddDate(0, 0, -days)
	records, err := s.uploads.ListUploadsSince(ctx, since, limit)
	if err != nil {
		return nil, apperrors.NewStorageUnavailableError("failed to load upload history", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no uploads in the last %d days", days), nil)
	}
	return records, nil
}

func (s *uploadService) AnalyzedFiles(ctx context.Context) ([]models.AnalyzedFile, error) {
	if !repository.Reachable(ctx, s.analyses, s.opts.ProbeTimeout) {
		return nil, apperrors.NewStorageUnavailableError("analysis history is unavailable", nil)
	}

	files, err := s.analyses.ListAnalyzedFiles(ctx)
	if err != nil {
		return nil, apperrors.NewStorageUnavailableError("failed to load analyzed files", err)
	}
	if len(files) == 0 {
		return nil, apperrors.NewNotFoundError("no analyzed files", nil)
	}
	return files, nil
}

// storeError keeps typed store errors and wraps anything else as 503.
func storeError(message string, err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.NewStorageUnavailableError(message, err)
}
