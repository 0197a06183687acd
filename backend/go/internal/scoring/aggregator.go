package scoring

import (
	"context"

	"ecofix/backend/go/internal/llm"
	"ecofix/backend/go/internal/models"
)

// Report 是一次评分调用的结果：解析后的结构和模型原文。
type Report struct {
	Parsed models.ParsedSustainability
	Raw    string
}

// Scorer 为一组活动记录计算可持续性评分。
type Scorer interface {
	Score(ctx context.Context, records []models.ActivityRecord) (*Report, error)
}

// Aggregator 通过生成模型计算可持续性评分。每次 Score 恰好调用一次模型，
// 不缓存、不重试，模型错误原样返回。
type Aggregator struct {
	model llm.LLM
}

// NewAggregator 创建一个使用 model 的 Aggregator。
func NewAggregator(model llm.LLM) *Aggregator {
	return &Aggregator{model: model}
}

// Score 为 records 构建提示词、调用模型并解析回复。
// 空输入同样会调用模型，摘要为空字符串。
func (a *Aggregator) Score(ctx context.Context, records []models.ActivityRecord) (*Report, error) {
	prompt := SustainabilityPrompt(Summarize(records))
	resp, err := a.model.Generate(ctx, prompt)
	if err != nil {
		return nil, &ModelError{Op: "sustainability score", Err: err}
	}
	return &Report{Parsed: ParseSustainability(resp.Text), Raw: resp.Text}, nil
}

var _ Scorer = (*Aggregator)(nil)
