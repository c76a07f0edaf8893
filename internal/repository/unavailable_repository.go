package repository

import (
	"context"
	"fmt"
	"time"

	"go-content-inspector/pkg/models"
)

// UnavailableRepository stands in when the database could not be opened at
// startup, so callers take their skip-persistence path.
type UnavailableRepository struct {
	Reason error
}

func (r UnavailableRepository) Ping(context.Context) error {
	return r.err()
}

func (r UnavailableRepository) SaveAnalysisResult(context.Context, *models.AnalysisResult) error {
	return r.err()
}

func (r UnavailableRepository) ListAnalyzedFiles(context.Context) ([]models.AnalyzedFile, error) {
	return nil, r.err()
}

func (r UnavailableRepository) FindUpload(context.Context, string, int64) (*models.UploadRecord, error) {
	return nil, r.err()
}

func (r UnavailableRepository) SaveUpload(context.Context, *models.UploadRecord) error {
	return r.err()
}

func (r UnavailableRepository) ListUploadsSince(context.Context, time.Time, int) ([]models.UploadRecord, error) {
	return nil, r.err()
}

func (r UnavailableRepository) err() error {
	if r.Reason != nil {
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, r.Reason)
	}
	return ErrRepositoryUnavailable
}
