package service

import (
	"context"
	"strings"

	apperrors "go-content-inspector/internal/errors"
	"go-content-inspector/internal/llm"
)

// ChatService forwards a free-form prompt to the model.
type ChatService interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type chatService struct {
	model       llm.Model
	temperature float32
}

func NewChatService(model llm.Model, temperature float32) ChatService {
	return &chatService{model: model, temperature: temperature}
}

func (s *chatService) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", apperrors.NewInvalidInputError("prompt cannot be empty", nil)
	}

	reply, err := s.model.Complete(ctx, llm.Request{
		UserPrompt:  prompt,
		Temperature: s.temperature,
	})
	if err != nil {
		return "", apperrors.NewRateLimitedError("chat completion failed", err)
	}
	return reply, nil
}
