// Package testutil provides in-memory doubles for the service's external
// collaborators: the model backend, the resource fetcher, object storage and
// the persistence layer.
package testutil

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go-content-inspector/internal/llm"
	"go-content-inspector/internal/repository"
	"go-content-inspector/internal/storage"
	"go-content-inspector/pkg/models"
)

// FakeModel implements llm.Model and records every request.
type FakeModel struct {
	mu    sync.Mutex
	calls []llm.Request

	// Respond, when set, computes the reply for the n-th call (0-based).
	Respond func(n int, req llm.Request) (string, error)
	Reply   string
	Err     error
}

func (m *FakeModel) Complete(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	n := len(m.calls)
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Respond != nil {
		return m.Respond(n, req)
	}
	return m.Reply, m.Err
}

func (m *FakeModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *FakeModel) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// FakeResource is one URL served by FakeFetcher.
type FakeResource struct {
	MediaType string
	Body      []byte
}

// FakeFetcher implements storage.ResourceFetcher from a fixed URL table.
type FakeFetcher struct {
	mu          sync.Mutex
	Resources   map[string]FakeResource
	HeaderErr   error
	BodyErr     error
	headerCalls int
	bodyCalls   int
}

func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{Resources: make(map[string]FakeResource)}
}

// Serve registers url with the given media type and body.
func (f *FakeFetcher) Serve(url, mediaType string, body []byte) *FakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Resources[url] = FakeResource{MediaType: mediaType, Body: body}
	return f
}

func (f *FakeFetcher) FetchHeader(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headerCalls++
	if f.HeaderErr != nil {
		return "", f.HeaderErr
	}
	res, ok := f.Resources[url]
	if !ok {
		return "", fmt.Errorf("fake fetcher: no resource for %s", url)
	}
	return res.MediaType, nil
}

func (f *FakeFetcher) FetchBody(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodyCalls++
	if f.BodyErr != nil {
		return nil, f.BodyErr
	}
	res, ok := f.Resources[url]
	if !ok {
		return nil, fmt.Errorf("fake fetcher: no resource for %s", url)
	}
	return res.Body, nil
}

// Calls returns the number of header and body fetches made so far.
func (f *FakeFetcher) Calls() (header, body int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.headerCalls, f.bodyCalls
}

// FakeObjectStore implements storage.ObjectStore in memory.
type FakeObjectStore struct {
	mu           sync.Mutex
	Objects      map[string][]byte
	ContentTypes map[string]string
	PutErr       error
	ListErr      error
}

func NewFakeObjectStore() *FakeObjectStore {
	return &FakeObjectStore{
		Objects:      make(map[string][]byte),
		ContentTypes: make(map[string]string),
	}
}

func (s *FakeObjectStore) Put(_ context.Context, key string, body io.Reader, contentType string) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[key] = data
	s.ContentTypes[key] = contentType
	return nil
}

// List pages through keys in lexical order; the token is the last key of
// the previous page.
func (s *FakeObjectStore) List(_ context.Context, token string, maxResults int32) (*storage.ObjectPage, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	keys := make([]string, 0, len(s.Objects))
	for k := range s.Objects {
		keys = append(keys, k)
	}
	s.mu.Unlock()
	sort.Strings(keys)

	start := 0
	if token != "" {
		start = sort.SearchStrings(keys, token) + 1
	}
	if start > len(keys) {
		start = len(keys)
	}
	end := len(keys)
	if maxResults > 0 && start+int(maxResults) < end {
		end = start + int(maxResults)
	}

	page := &storage.ObjectPage{Keys: keys[start:end]}
	if end < len(keys) {
		page.NextToken = keys[end-1]
	}
	return page, nil
}

func (s *FakeObjectStore) Presign(_ context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://store.test/uploads/%s?se=%d", key, int(ttl.Minutes())), nil
}

// FakeRepository implements repository.AnalysisRepository and
// repository.UploadRepository in memory.
type FakeRepository struct {
	mu       sync.Mutex
	Analyses []models.AnalysisResult
	Uploads  []models.UploadRecord

	PingErr error
	SaveErr error
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{}
}

func (r *FakeRepository) Ping(context.Context) error {
	return r.PingErr
}

func (r *FakeRepository) SaveAnalysisResult(_ context.Context, result *models.AnalysisResult) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	r.Analyses = append(r.Analyses, *result)
	return nil
}

func (r *FakeRepository) ListAnalyzedFiles(context.Context) ([]models.AnalyzedFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	files := []models.AnalyzedFile{}
	for _, u := range r.Uploads {
		for _, a := range r.Analyses {
			if a.SourceURL == u.PresignedURL {
				files = append(files, models.AnalyzedFile{
					LocalFileName: u.LocalFileName,
					ContentType:   u.ContentType,
					AnalysisText:  a.AnalysisText,
					AnalyzedAt:    a.CreatedAt,
				})
			}
		}
	}
	return files, nil
}

func (r *FakeRepository) FindUpload(_ context.Context, name string, size int64) (*models.UploadRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.Uploads) - 1; i >= 0; i-- {
		if u := r.Uploads[i]; u.LocalFileName == name && u.FileLengthInBytes == size {
			return &u, nil
		}
	}
	return nil, repository.ErrUploadNotFound
}

func (r *FakeRepository) SaveUpload(_ context.Context, record *models.UploadRecord) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.LoadTime.IsZero() {
		record.LoadTime = time.Now().UTC()
	}
	r.Uploads = append(r.Uploads, *record)
	return nil
}

func (r *FakeRepository) ListUploadsSince(_ context.Context, since time.Time, limit int) ([]models.UploadRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.UploadRecord{}
	for i := len(r.Uploads) - 1; i >= 0; i-- {
		if !r.Uploads[i].LoadTime.Before(since) {
			out = append(out, r.Uploads[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// SavedAnalyses returns a copy of the persisted analysis results.
func (r *FakeRepository) SavedAnalyses() []models.AnalysisResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AnalysisResult, len(r.Analyses))
	copy(out, r.Analyses)
	return out
}

// PromptPayload returns the text appended after the instruction block of a
// summarization prompt.
func PromptPayload(req llm.Request) string {
	if i := strings.Index(req.UserPrompt, "\n\n"); i >= 0 {
		return req.UserPrompt[i+2:]
	}
	return req.UserPrompt
}
