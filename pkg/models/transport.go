package models

// AnalysisRequest is the body of POST /analyze.
type AnalysisRequest struct {
	URL string `json:"url" binding:"required"`
}

// AnalysisResponse is returned by POST /analyze.
type AnalysisResponse struct {
	SourceURL    string `json:"sourceUrl"`
	AnalysisText string `json:"analysisText"`
	ContentKind  string `json:"contentKind"`
	Persisted    bool   `json:"persisted"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Prompt string `json:"prompt"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// UploadResponse carries the presigned read URL of a stored file.
type UploadResponse struct {
	FileURL string `json:"fileUrl"`
}

// FileListResponse maps object keys to presigned URLs for one listing page.
type FileListResponse struct {
	Files     map[string]string `json:"files"`
	NextToken string            `json:"nextToken,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
