package scoring

import (
	"context"
	"fmt"

	"ecofix/backend/go/internal/llm"
	"ecofix/backend/go/internal/models"
)

// GreenAction 是绿色行动模拟器中可选的行动。
type GreenAction string

const (
	SwitchToRenewableEnergy GreenAction = "switch_to_renewable_energy"
	ReduceMeatConsumption   GreenAction = "reduce_meat_consumption"
	UsePublicTransport      GreenAction = "use_public_transport"
)

var actionLabels = map[GreenAction]string{
	SwitchToRenewableEnergy: "Switch to Renewable Energy",
	ReduceMeatConsumption:   "Reduce Meat Consumption",
	UsePublicTransport:      "Use Public Transport",
}

// Valid 报告 a 是否是已知行动。
func (a GreenAction) Valid() bool {
	_, ok := actionLabels[a]
	return ok
}

// Label 返回行动的展示名称。
func (a GreenAction) Label() string {
	if label, ok := actionLabels[a]; ok {
		return label
	}
	return string(a)
}

// Simulator 估算采取某个绿色行动后的可持续性评分。
type Simulator struct {
	model llm.LLM
}

// NewSimulator 创建一个使用 model 的 Simulator。
func NewSimulator(model llm.LLM) *Simulator {
	return &Simulator{model: model}
}

// Simulate 调用一次模型并解析回复。未知行动返回错误且不调用模型。
func (s *Simulator) Simulate(ctx context.Context, action GreenAction, records []models.ActivityRecord) (*Report, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("unknown green action %q", action)
	}
	resp, err := s.model.Generate(ctx, SimulationPrompt(action, Summarize(records)))
	if err != nil {
		return nil, &ModelError{Op: "green action simulation", Err: err}
	}
	return &Report{Parsed: ParseSustainability(resp.Text), Raw: resp.Text}, nil
}
