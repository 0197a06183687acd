package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ecofix/backend/go/internal/models"

	olla "github.com/ollama/ollama/api"
)

// Ollama 是一个用于本地 Ollama 服务的 LLM 客户端，便于离线开发。
type Ollama struct {
	client *olla.Client // Ollama 客户端实例。
	model  string       // 要使用的模型名称。
}

// NewOllama 创建一个新的 Ollama 客户端。baseURL 为空时默认为 "http://localhost:11434"。
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &ConfigurationError{Provider: "ollama", Reason: "invalid base URL", Err: err}
	}

	hc := &http.Client{
		Timeout: 120 * time.Second,
	}

	return &Ollama{client: olla.NewClient(parsedURL, hc), model: model}, nil
}

// Generate 使用 Ollama API 以非流式方式生成内容。
func (o *Ollama) Generate(ctx context.Context, prompt string) (*models.ModelResponse, error) {
	var result *olla.GenerateResponse
	stream := false

	err := o.client.Generate(ctx, &olla.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &stream,
	}, func(resp olla.GenerateResponse) error {
		result = &resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with ollama: %w", err)
	}
	if result == nil || result.Response == "" {
		return nil, ErrEmptyResponse
	}

	return &models.ModelResponse{Text: result.Response, ModelVersion: result.Model}, nil
}
