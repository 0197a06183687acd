package scoring

import (
	"errors"
	"fmt"
)

// ErrNoFootprint 表示模型回复中没有可识别的碳足迹数值。
var ErrNoFootprint = errors.New("no carbon footprint value in model response")

// ParseError 表示模型回复中缺少必需的字段。
// 调用方应将其视为“无法计算”，而不是崩溃。
type ParseError struct {
	Field string
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ModelError 表示生成模型调用失败（上游错误），与解析失败区分开。
type ModelError struct {
	Op  string
	Err error
}

func (e *ModelError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ModelError) Unwrap() error {
	return e.Err
}
