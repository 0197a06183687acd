package scoring

import (
	"context"

	"ecofix/backend/go/internal/llm"
	"ecofix/backend/go/internal/models"
)

// Estimator 通过生成模型估算单条活动的碳足迹。
type Estimator struct {
	model llm.LLM
}

// NewEstimator 创建一个使用 model 的 Estimator。
func NewEstimator(model llm.LLM) *Estimator {
	return &Estimator{model: model}
}

// CarbonFootprint 调用一次模型并提取碳足迹数值。
// 模型调用失败时返回包装后的错误；回复中没有数值时返回 *ParseError，此时 raw 仍然有效。
func (e *Estimator) CarbonFootprint(ctx context.Context, record models.ActivityRecord) (raw string, footprint models.ParsedFootprint, err error) {
	resp, err := e.model.Generate(ctx, FootprintPrompt(record))
	if err != nil {
		return "", models.ParsedFootprint{}, &ModelError{Op: "carbon footprint", Err: err}
	}
	footprint, err = ParseFootprint(resp.Text)
	return resp.Text, footprint, err
}
