package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "go-content-inspector/internal/errors"
	"go-content-inspector/internal/testutil"
	"go-content-inspector/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUploadService(store *testutil.FakeObjectStore, repo *testutil.FakeRepository) UploadService {
	opts := UploadOptions{PresignTTL: 60 * time.Minute, ProbeTimeout: 50 * time.Millisecond}
	if store == nil {
		return NewUploadService(nil, repo, repo, opts)
	}
	return NewUploadService(store, repo, repo, opts)
}

func textFile(name, body string) FileUpload {
	return FileUpload{Name: name, Size: int64(len(body)), ContentType: "text/plain", Body: strings.NewReader(body)}
}

func TestUpload_StoresAndRecords(t *testing.T) {
	store := testutil.NewFakeObjectStore()
	repo := testutil.NewFakeRepository()
	svc := newUploadService(store, repo)

	url, err := svc.Upload(context.Background(), textFile("Notes.TXT", "hello world"))

	require.NoError(t, err)
	assert.Contains(t, url, "https://store.test/uploads/")
	assert.Contains(t, url, ".txt?se=60")
	require.Len(t, store.Objects, 1)
	for key, data := range store.Objects {
		assert.True(t, strings.HasSuffix(key, ".txt"))
		assert.Equal(t, "hello world", string(data))
		assert.Equal(t, "text/plain", store.ContentTypes[key])
	}

	require.Len(t, repo.Uploads, 1)
	assert.Equal(t, "Notes.TXT", repo.Uploads[0].LocalFileName)
	assert.Equal(t, int64(11), repo.Uploads[0].FileLengthInBytes)
	assert.Equal(t, url, repo.Uploads[0].PresignedURL)
}

func TestUpload_RejectsDuplicate(t *testing.T) {
	store := testutil.NewFakeObjectStore()
	repo := testutil.NewFakeRepository()
	repo.Uploads = append(repo.Uploads, models.UploadRecord{
		LocalFileName:     "report.pdf",
		FileLengthInBytes: 4,
		LoadTime:          time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	})
	svc := newUploadService(store, repo)

	_, err := svc.Upload(context.Background(), textFile("report.pdf", "%PDF"))

	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeDuplicateUpload, appErr.Type)
	assert.Equal(t, "File already loaded on 2026-03-14", appErr.Message)
	assert.Equal(t, 409, appErr.StatusCode)
	assert.Empty(t, store.Objects)
}

func TestUpload_SkipsDuplicateCheckWhenRepositoryUnreachable(t *testing.T) {
	store := testutil.NewFakeObjectStore()
	repo := testutil.NewFakeRepository()
	repo.PingErr = errors.New("down")
	repo.Uploads = append(repo.Uploads, models.UploadRecord{LocalFileName: "a.txt", FileLengthInBytes: 1})
	svc := newUploadService(store, repo)

	_, err := svc.Upload(context.Background(), textFile("a.txt", "x"))

	require.NoError(t, err)
	assert.Len(t, store.Objects, 1)
	assert.Len(t, repo.Uploads, 1, "metadata is not recorded while unreachable")
}

func TestUpload_Errors(t *testing.T) {
	repo := testutil.NewFakeRepository()

	_, err := newUploadService(testutil.NewFakeObjectStore(), repo).Upload(context.Background(), FileUpload{Name: "empty.txt"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidInput))

	_, err = newUploadService(nil, repo).Upload(context.Background(), textFile("a.txt", "x"))
	assert.Equal(t, 503, apperrors.GetStatusCode(err))

	store := testutil.NewFakeObjectStore()
	store.PutErr = errors.New("network unreachable")
	_, err = newUploadService(store, repo).Upload(context.Background(), textFile("a.txt", "x"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStorageUnavailable))
}

func TestListFiles_Pages(t *testing.T) {
	store := testutil.NewFakeObjectStore()
	for _, key := range []string{"a.txt", "b.txt", "c.txt"} {
		store.Objects[key] = []byte(key)
	}
	svc := newUploadService(store, testutil.NewFakeRepository())

	first, err := svc.ListFiles(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Len(t, first.Files, 2)
	assert.Equal(t, "https://store.test/uploads/a.txt?se=60", first.Files["a.txt"])
	require.NotEmpty(t, first.NextToken)

	second, err := svc.ListFiles(context.Background(), first.NextToken, 2)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"c.txt": "https://store.test/uploads/c.txt?se=60"}, second.Files)
	assert.Empty(t, second.NextToken)
}

func TestListFiles_Errors(t *testing.T) {
	_, err := newUploadService(nil, testutil.NewFakeRepository()).ListFiles(context.Background(), "", 10)
	assert.Equal(t, 503, apperrors.GetStatusCode(err))

	store := testutil.NewFakeObjectStore()
	store.ListErr = apperrors.NewInvalidInputError("container uploads does not exist", nil)
	_, err = newUploadService(store, testutil.NewFakeRepository()).ListFiles(context.Background(), "", 10)
	assert.Equal(t, 400, apperrors.GetStatusCode(err))

	_, err = newUploadService(testutil.NewFakeObjectStore(), testutil.NewFakeRepository()).ListFiles(context.Background(), "", -1)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidInput))
}

func TestLoadHistory(t *testing.T) {
	repo := testutil.NewFakeRepository()
	now := time.Now().UTC()
	repo.Uploads = []models.UploadRecord{
		{LocalFileName: "old.txt", LoadTime: now.AddDate(0, 0, -3)},
		{LocalFileName: "recent.txt", LoadTime: now.Add(-time.Hour)},
	}
	svc := newUploadService(testutil.NewFakeObjectStore(), repo)

	records, err := svc.LoadHistory(context.Background(), 1, 30)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "recent.txt", records[0].LocalFileName)

	_, err = svc.LoadHistory(context.Background(), 0, 30)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidInput))

	_, err = newUploadService(nil, testutil.NewFakeRepository()).LoadHistory(context.Background(), 1, 30)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	repo.PingErr = errors.New("down")
	_, err = svc.LoadHistory(context.Background(), 1, 30)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStorageUnavailable))
}

func TestAnalyzedFiles(t *testing.T) {
	repo := testutil.NewFakeRepository()
	svc := newUploadService(testutil.NewFakeObjectStore(), repo)

	_, err := svc.AnalyzedFiles(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	repo.Uploads = []models.UploadRecord{{LocalFileName: "doc.pdf", PresignedURL: "https://store.test/uploads/k.pdf", ContentType: "application/pdf"}}
	repo.Analyses = []models.AnalysisResult{{SourceURL: "https://store.test/uploads/k.pdf", AnalysisText: "summary"}}

	files, err := svc.AnalyzedFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "doc.pdf", files[0].LocalFileName)
	assert.Equal(t, "summary", files[0].AnalysisText)

	repo.PingErr = errors.New("down")
	_, err = svc.AnalyzedFiles(context.Background())
	assert.Equal(t, 503, apperrors.GetStatusCode(err))
}
