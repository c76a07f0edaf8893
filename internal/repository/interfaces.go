package repository

import (
	"context"
	"time"

	"go-content-inspector/pkg/models"
)

// Pinger reports whether the backing store can be reached.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AnalysisRepository defines the interface for analysis result operations
type AnalysisRepository interface {
	Pinger

	// SaveAnalysisResult appends an analysis result; results are never upserted
	SaveAnalysisResult(ctx context.Context, result *models.AnalysisResult) error

	// ListAnalyzedFiles joins uploads with analyses of their presigned URLs
	ListAnalyzedFiles(ctx context.Context) ([]models.AnalyzedFile, error)
}

// UploadRepository stores metadata about uploaded files
type UploadRepository interface {
	Pinger

	// FindUpload returns ErrUploadNotFound when no record has this name and length
	FindUpload(ctx context.Context, fileName string, size int64) (*models.UploadRecord, error)

	SaveUpload(ctx context.Context, record *models.UploadRecord) error

	// ListUploadsSince returns the newest uploads loaded at or after since
	ListUploadsSince(ctx context.Context, since time.Time, limit int) ([]models.UploadRecord, error)
}

// Reachable probes p with a bounded timeout. A nil Pinger is unreachable.
func Reachable(ctx context.Context, p Pinger, timeout time.Duration) bool {
	if p == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Ping(ctx) == nil
}
