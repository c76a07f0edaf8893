package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"go-content-inspector/pkg/models"
)

//go:embed schema.sql
var schemaSQL string

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA temp_store=MEMORY",
}

// SQLiteRepository implements AnalysisRepository and UploadRepository on a
// single SQLite database. Timestamps are stored as unix nanoseconds.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository opens (creating if needed) the database at path and
// applies the schema.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func applySchema(db *sql.DB) error {
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveAnalysisResult(ctx context.Context, result *models.AnalysisResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = r.now().UTC()
	}

	query, args, err := sq.Insert("analysis_results").
		Columns("id", "source_url", "analysis_text", "created_at").
		Values(result.ID, result.SourceURL, result.AnalysisText, result.CreatedAt.UnixNano()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert analysis result: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListAnalyzedFiles(ctx context.Context) ([]models.AnalyzedFile, error) {
	query, args, err := sq.Select("u.local_file_name", "u.content_type", "a.analysis_text", "a.created_at").
		From("upload_history u").
		Join("analysis_results a ON a.source_url = u.presigned_url").
		OrderBy("a.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query analyzed files: %w", err)
	}
	defer rows.Close()

	files := []models.AnalyzedFile{}
	for rows.Next() {
		var (
			f         models.AnalyzedFile
			createdAt int64
		)
		if err := rows.Scan(&f.LocalFileName, &f.ContentType, &f.AnalysisText, &createdAt); err != nil {
			return nil, fmt.Errorf("scan analyzed file: %w", err)
		}
		f.AnalyzedAt = time.Unix(0, createdAt).UTC()
		files = append(files, f)
	}
	return files, rows.Err()
}

var uploadColumns = []string{
	"id", "local_file_name", "file_length", "storage_key", "presigned_url", "content_type", "load_time",
}

func (r *SQLiteRepository) FindUpload(ctx context.Context, fileName string, size int64) (*models.UploadRecord, error) {
	query, args, err := sq.Select(uploadColumns...).
		From("upload_history").
		Where(sq.Eq{"local_file_name": fileName, "file_length": size}).
		OrderBy("load_time DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	record, err := scanUpload(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find upload: %w", err)
	}
	return record, nil
}

func (r *SQLiteRepository) SaveUpload(ctx context.Context, record *models.UploadRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.LoadTime.IsZero() {
		record.LoadTime = r.now().UTC()
	}

	query, args, err := sq.Insert("upload_history").
		Columns(uploadColumns...).
		Values(record.ID, record.LocalFileName, record.FileLengthInBytes, record.StorageKey,
			record.PresignedURL, record.ContentType, record.LoadTime.UnixNano()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListUploadsSince(ctx context.Context, since time.Time, limit int) ([]models.UploadRecord, error) {
	builder := sq.Select(uploadColumns...).
		From("upload_history").
		Where(sq.GtOrEq{"load_time": since.UnixNano()}).
		OrderBy("load_time DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	records := []models.UploadRecord{}
	for rows.Next() {
		record, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUpload(row rowScanner) (*models.UploadRecord, error) {
	var (
		rec      models.UploadRecord
		loadTime int64
	)
	err := row.Scan(&rec.ID, &rec.LocalFileName, &rec.FileLengthInBytes, &rec.StorageKey,
		&rec.PresignedURL, &rec.ContentType, &loadTime)
	if err != nil {
		return nil, err
	}
	rec.LoadTime = time.Unix(0, loadTime).UTC()
	return &rec, nil
}
