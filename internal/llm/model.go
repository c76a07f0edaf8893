// Package llm wraps the generative model backend behind a small interface so
// analyzers can be exercised without network access.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// Request is a single chat completion.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	// ImageURL attaches an image part and routes the call to the vision model.
	ImageURL     string
	JSONResponse bool
	Temperature  float32
}

// Model completes prompts.
type Model interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrEmptyCompletion is returned when the backend answers without choices.
var ErrEmptyCompletion = errors.New("model returned no choices")

// OpenAIOptions configures OpenAIModel.
type OpenAIOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	VisionModel string
	HTTPClient  *http.Client
}

// OpenAIModel implements Model against any OpenAI-compatible endpoint.
type OpenAIModel struct {
	client      *openai.Client
	model       string
	visionModel string
}

func NewOpenAIModel(opts OpenAIOptions) *OpenAIModel {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	vision := opts.VisionModel
	if vision == "" {
		vision = opts.Model
	}

	return &OpenAIModel{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		visionModel: vision,
	}
}

func (m *OpenAIModel) Complete(ctx context.Context, req Request) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       m.model,
		Temperature: req.Temperature,
	}

	if req.SystemPrompt != "" {
		chatReq.Messages = append(chatReq.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if req.ImageURL != "" {
		chatReq.Model = m.visionModel
		user.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: req.UserPrompt},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    req.ImageURL,
					Detail: openai.ImageURLDetailAuto,
				},
			},
		}
	} else {
		user.Content = req.UserPrompt
	}
	chatReq.Messages = append(chatReq.Messages, user)

	if req.JSONResponse {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := m.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// IsRateLimited reports whether err carries a 429 from the backend.
func IsRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}
