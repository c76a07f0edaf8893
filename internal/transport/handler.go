package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	apperrors "go-content-inspector/internal/errors"
	"go-content-inspector/internal/logger"
	"go-content-inspector/internal/service"
	"go-content-inspector/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MetricsSource exposes pipeline counters for GET /metrics.
type MetricsSource interface {
	GetMetrics() map[string]interface{}
}

// Options carries request limits for the handler.
type Options struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	MaxUploadSize      int64
}

// Services groups the collaborators behind the HTTP routes.
type Services struct {
	Analysis service.AnalysisService
	Uploads  service.UploadService
	Chat     service.ChatService
	Metrics  MetricsSource
}

func NewHandler(svc Services, opts Options) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	api := r.Group("/")
	api.Use(
		requestSizeLimiter(opts.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	api.POST("/analyze", analyzeURL(svc.Analysis, opts.RequestTimeout))
	api.POST("/chat", chat(svc.Chat, opts.RequestTimeout))
	r.GET("/files", listFiles(svc.Uploads, opts.RequestTimeout))
	r.POST("/upload", requestSizeLimiter(opts.MaxUploadSize), errorHandler(), uploadFile(svc.Uploads, opts.RequestTimeout))
	r.GET("/uploads/history", loadHistory(svc.Uploads))
	r.GET("/analyses", analyzedFiles(svc.Uploads))
	r.GET("/metrics", metrics(svc.Metrics))

	return r
}

func analyzeURL(s service.AnalysisService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		var req models.AnalysisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		outcome, err := s.Analyze(ctx, req.URL)
		if err != nil {
			respondAppError(c, "analysis failed", timeoutAware(ctx, err))
			return
		}

		logger.WithFields(logrus.Fields{
			"url":                req.URL,
			"content_kind":       outcome.Kind,
			"persisted":          outcome.Persisted,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Analysis request completed")

		c.JSON(http.StatusOK, models.AnalysisResponse{
			SourceURL:    outcome.Result.SourceURL,
			AnalysisText: outcome.Result.AnalysisText,
			ContentKind:  string(outcome.Kind),
			Persisted:    outcome.Persisted,
		})
	}
}

func chat(s service.ChatService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		reply, err := s.Complete(ctx, req.Prompt)
		if err != nil {
			respondAppError(c, "chat failed", err)
			return
		}
		c.JSON(http.StatusOK, models.ChatResponse{Reply: reply})
	}
}

func listFiles(s service.UploadService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		maxResults, err := queryInt32(c, "maxResults")
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid maxResults", err)
			return
		}

		page, err := s.ListFiles(ctx, c.Query("continuationToken"), maxResults)
		if err != nil {
			respondAppError(c, "listing failed", err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func uploadFile(s service.UploadService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		header, err := c.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respondError(c, http.StatusRequestEntityTooLarge, "file too large", err)
				return
			}
			respondError(c, http.StatusBadRequest, "file is required", err)
			return
		}

		f, err := header.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "unreadable file", err)
			return
		}
		defer f.Close()

		url, err := s.Upload(ctx, service.FileUpload{
			Name:        header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
			Body:        f,
		})
		if err != nil {
			respondAppError(c, "upload failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"file": header.Filename,
			"size": header.Size,
		}).Info("File uploaded")
		c.JSON(http.StatusOK, models.UploadResponse{FileURL: url})
	}
}

func loadHistory(s service.UploadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, err := queryInt(c, "days", 1)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid days", err)
			return
		}
		limit, err := queryInt(c, "limit", 30)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid limit", err)
			return
		}

		records, err := s.LoadHistory(c.Request.Context(), days, limit)
		if err != nil {
			respondAppError(c, "history unavailable", err)
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

func analyzedFiles(s service.UploadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		files, err := s.AnalyzedFiles(c.Request.Context())
		if err != nil {
			respondAppError(c, "analyzed files unavailable", err)
			return
		}
		c.JSON(http.StatusOK, files)
	}
}

func metrics(m MetricsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
		c.JSON(http.StatusOK, m.GetMetrics())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"ip":          c.ClientIP(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("Request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

func determineStatusCode(err error) int {
	if appErr, ok := apperrors.As(err); ok {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// timeoutAware reports an expired request deadline as a timeout even when
// the failing collaborator wrapped it differently.
func timeoutAware(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
		return apperrors.NewTimeoutError("request timed out", err)
	}
	return err
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func queryInt32(c *gin.Context, key string) (int32, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	return int32(n), err
}

func respondAppError(c *gin.Context, message string, err error) {
	if appErr, ok := apperrors.As(err); ok {
		detail := appErr.Message
		if appErr.Details != "" {
			detail = fmt.Sprintf("%s (%s)", appErr.Message, appErr.Details)
		}
		logRequestError(c, appErr.StatusCode, message, err)
		c.AbortWithStatusJSON(appErr.StatusCode, models.ErrorResponse{
			Error:   http.StatusText(appErr.StatusCode),
			Message: detail,
		})
		return
	}
	respondError(c, determineStatusCode(err), message, err)
}

func respondError(c *gin.Context, code int, message string, err error) {
	logRequestError(c, code, message, err)
	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}

func logRequestError(c *gin.Context, code int, message string, err error) {
	entry := logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
		return
	}
	entry.Warn("Request rejected")
}
