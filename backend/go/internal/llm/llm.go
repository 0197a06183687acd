package llm

import (
	"context"
	"errors"
	"fmt"

	"ecofix/backend/go/internal/config"
	"ecofix/backend/go/internal/models"
	"ecofix/backend/go/pkg/circuitbreaker"
)

// LLM 定义了生成模型客户端必须实现的通用接口：一次调用，一个提示词，一段文本回复。
type LLM interface {
	Generate(ctx context.Context, prompt string) (*models.ModelResponse, error)
}

// ErrEmptyResponse 表示模型没有返回任何文本（例如提示被安全策略拦截）。
var ErrEmptyResponse = errors.New("model returned no text")

// ConfigurationError 表示模型客户端无法初始化，例如缺少 API 密钥。
// 它在进程启动时出现，不按请求恢复。
type ConfigurationError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("llm %s: %s", e.Provider, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewClient 是一个工厂函数，根据提供的配置创建并返回一个实现了 LLM 接口的客户端。
// 配置不完整时返回 *ConfigurationError。
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, &ConfigurationError{Provider: "gemini", Reason: "missing API key"}
		}
		return NewGemini(ctx, cfg.Gemini.Model, cfg.Gemini.APIKey)
	case "ollama":
		if cfg.Ollama.Model == "" {
			return nil, &ConfigurationError{Provider: "ollama", Reason: "missing model name"}
		}
		return NewOllama(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, &ConfigurationError{Provider: "openai", Reason: "missing API key"}
		}
		return NewOpenAI(cfg.OpenAI.Model, cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL), nil
	default:
		return nil, &ConfigurationError{Provider: cfg.Provider, Reason: "unsupported provider"}
	}
}

// guarded 在调用模型前经过熔断器。失败不会重试，直接返回给调用方。
type guarded struct {
	next    LLM
	breaker *circuitbreaker.Breaker
}

// WithBreaker 用熔断器包装一个 LLM。breaker 为 nil 时原样返回。
func WithBreaker(next LLM, breaker *circuitbreaker.Breaker) LLM {
	if breaker == nil {
		return next
	}
	return &guarded{next: next, breaker: breaker}
}

func (g *guarded) Generate(ctx context.Context, prompt string) (*models.ModelResponse, error) {
	var resp *models.ModelResponse
	err := g.breaker.Execute(func() error {
		var err error
		resp, err = g.next.Generate(ctx, prompt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
