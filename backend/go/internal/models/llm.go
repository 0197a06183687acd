package models

// ModelResponse 是生成模型回复的统一形态，适配层负责把底层客户端的返回值规整为它。
type ModelResponse struct {
	Text         string `json:"text"`
	ModelVersion string `json:"modelVersion,omitempty"`
}
