package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go-content-inspector/internal/content"
	apperrors "go-content-inspector/internal/errors"
)

// ResourceFetcher retrieves remote resources named by analysis requests.
type ResourceFetcher interface {
	// FetchHeader returns the normalized media type the server declares for url.
	FetchHeader(ctx context.Context, url string) (string, error)
	// FetchBody downloads the full response body of url.
	FetchBody(ctx context.Context, url string) ([]byte, error)
}

// FetcherOptions tunes HTTPResourceFetcher.
type FetcherOptions struct {
	UserAgent string
	Timeout   time.Duration
	MaxBytes  int64
}

// HTTPResourceFetcher implements ResourceFetcher over net/http.
type HTTPResourceFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewHTTPResourceFetcher creates a fetcher with a pooled transport and a
// three-redirect limit.
func NewHTTPResourceFetcher(opts FetcherOptions) *HTTPResourceFetcher {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 16 << 10,
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 25 << 20
	}

	return &HTTPResourceFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
	}
}

// FetchHeader issues a HEAD request, falling back to GET when HEAD answers
// with any non-2xx status. The GET body is closed unread.
func (f *HTTPResourceFetcher) FetchHeader(ctx context.Context, url string) (string, error) {
	resp, err := f.do(ctx, http.MethodHead, url)
	if err == nil && checkStatus(resp) != nil {
		resp.Body.Close()
		resp, err = f.do(ctx, http.MethodGet, url)
	}
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}
	return content.MediaType(resp.Header.Get("Content-Type")), nil
}

// FetchBody downloads url, failing when the body exceeds the configured limit.
func (f *HTTPResourceFetcher) FetchBody(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, classifyTransportError("failed to read resource body", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, apperrors.NewFetchError(fmt.Sprintf("resource exceeds %d bytes", f.maxBytes), nil)
	}
	return body, nil
}

func (f *HTTPResourceFetcher) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, apperrors.NewFetchError("invalid resource URL", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError("failed to fetch resource", err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return apperrors.NewFetchError(
		fmt.Sprintf("resource responded with status %d", resp.StatusCode), nil,
	).WithDetails(http.StatusText(resp.StatusCode))
}

func classifyTransportError(message string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.NewTimeoutError("resource fetch timeout", err)
	}
	return apperrors.NewFetchError(message, err)
}
