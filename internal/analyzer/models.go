package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"go-content-inspector/pkg/models"
)

type (
	ImageMetaData = models.ImageMetaData
	TextMetaData  = models.TextMetaData
)

// TryParseImageMetaData decodes a model response into ImageMetaData. The
// raw response stays authoritative; callers use this only for validation.
func TryParseImageMetaData(raw string) (*ImageMetaData, error) {
	var meta ImageMetaData
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &meta); err != nil {
		return nil, fmt.Errorf("image metadata: %w", err)
	}
	if meta.Confidence != nil && (*meta.Confidence < 0 || *meta.Confidence > 1) {
		return nil, fmt.Errorf("image metadata: confidence %v out of range", *meta.Confidence)
	}
	return &meta, nil
}

// TryParseTextMetaData decodes a summarization response into TextMetaData.
func TryParseTextMetaData(raw string) (*TextMetaData, error) {
	var meta TextMetaData
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &meta); err != nil {
		return nil, fmt.Errorf("text metadata: %w", err)
	}
	switch meta.Sentiment {
	case "", models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative:
	default:
		return nil, fmt.Errorf("text metadata: unknown sentiment %q", meta.Sentiment)
	}
	return &meta, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
