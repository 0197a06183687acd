package scoring

import (
	"context"
	"sync"

	"ecofix/backend/go/internal/models"
)

// fakeLLM 记录收到的提示词，并按 reply 生成回复。
type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (string, error)
}

func replying(text string) *fakeLLM {
	return &fakeLLM{reply: func(string) (string, error) { return text, nil }}
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (*models.ModelResponse, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	text, err := f.reply(prompt)
	if err != nil {
		return nil, err
	}
	return &models.ModelResponse{Text: text, ModelVersion: "fake-1"}, nil
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}
