package llm

import (
	"context"
	"fmt"
	"strings"

	"ecofix/backend/go/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini 是一个实现了 LLM 接口的结构体，用于与 Gemini API 交互。
// 每次调用都是独立的 GenerateContent 请求，不保留会话历史。
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini 创建一个新的 Gemini 客户端。
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &ConfigurationError{Provider: "gemini", Reason: "failed to create client", Err: err}
	}
	return &Gemini{
		client: client,
		model:  client.GenerativeModel(model),
	}, nil
}

// Generate 向 Gemini API 发送提示词并返回规整后的文本回复。
func (g *Gemini) Generate(ctx context.Context, prompt string) (*models.ModelResponse, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	return fromGenaiResponse(resp)
}

// Close 释放底层连接。
func (g *Gemini) Close() error {
	return g.client.Close()
}

// fromGenaiResponse 取第一个带内容的候选项，拼接其中所有文本部分。
func fromGenaiResponse(resp *genai.GenerateContentResponse) (*models.ModelResponse, error) {
	if resp == nil {
		return nil, ErrEmptyResponse
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		if sb.Len() > 0 {
			return &models.ModelResponse{Text: sb.String()}, nil
		}
	}
	return nil, ErrEmptyResponse
}
