package models

import "time"

// Sentiment values accepted in TextMetaData.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// ImageMetaData is the JSON shape requested from the vision model.
type ImageMetaData struct {
	City          *string  `json:"city"`
	Region        *string  `json:"region,omitempty"`
	Country       *string  `json:"country"`
	Landmark      *string  `json:"landmark"`
	Weather       *string  `json:"weather"`
	Category      string   `json:"category"`
	Caption       *string  `json:"caption"`
	Confidence    *float64 `json:"confidence"`
	Justification *string  `json:"justification,omitempty"`
}

// TextMetaData is the JSON shape requested for text and PDF summaries.
type TextMetaData struct {
	Caption    string   `json:"caption"`
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
	Keywords   []string `json:"keywords"`
	Sentiment  string   `json:"sentiment"`
}

// AnalysisResult is the outcome of analyzing one URL. AnalysisText holds the
// model response verbatim.
type AnalysisResult struct {
	ID           string    `json:"id,omitempty"`
	SourceURL    string    `json:"sourceUrl"`
	AnalysisText string    `json:"analysisText"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UploadRecord describes a file stored through the upload endpoint.
type UploadRecord struct {
	ID                string    `json:"id,omitempty"`
	LocalFileName     string    `json:"localFileName"`
	FileLengthInBytes int64     `json:"fileLengthInBytes"`
	StorageKey        string    `json:"storageKey"`
	PresignedURL      string    `json:"presignedUrl"`
	ContentType       string    `json:"contentType,omitempty"`
	LoadTime          time.Time `json:"loadTime"`
}

// AnalyzedFile joins an upload with an analysis of its presigned URL.
type AnalyzedFile struct {
	LocalFileName string    `json:"localFileName"`
	ContentType   string    `json:"contentType,omitempty"`
	AnalysisText  string    `json:"analysisText"`
	AnalyzedAt    time.Time `json:"analyzedAt"`
}
