package scoring

import (
	"regexp"
	"strconv"
	"strings"

	"ecofix/backend/go/internal/models"
)

// 模型输出格式没有契约保证，解析是尽力而为的模式匹配。
// 除碳足迹数值外，每个字段都独立可选。
var (
	// 数字左侧不能紧挨数字、逗号或小数点，避免从 "1,234.5" 中截出 "234.5"
	footprintPattern  = regexp.MustCompile(`(?i)(?:^|[^\d.,])(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d*\.\d+|\d+)\s*kg\s*CO2e`)
	scorePattern      = regexp.MustCompile(`(?i)score[*_\s]*:[*_\s]*(\d+)(\.\d+)?`)
	breakdownPattern  = regexp.MustCompile(`([A-Za-z][A-Za-z0-9_]*)[*_]*:[*_ \t]*(\d+)(\.\d+)?`)
	suggestionPattern = regexp.MustCompile(`(?m)^[ \t]*-[ \t]+(.+)$`)
)

// scoreSuffix 结尾的键是评分本身（"Score"、"SustainabilityScore"），不计入明细。
const scoreSuffix = "score"

// ParseFootprint 提取第一个紧跟 "kg CO2e"（不区分大小写）的十进制数，
// 支持千位分隔符（"1,234.5"）和省略整数部分的小数（".5"）。
// 找不到时返回包装 ErrNoFootprint 的 *ParseError。
func ParseFootprint(text string) (models.ParsedFootprint, error) {
	m := footprintPattern.FindStringSubmatch(text)
	if m == nil {
		return models.ParsedFootprint{}, &ParseError{Field: "carbon footprint", Input: text, Err: ErrNoFootprint}
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return models.ParsedFootprint{}, &ParseError{Field: "carbon footprint", Input: text, Err: ErrNoFootprint}
	}
	return models.ParsedFootprint{Value: value, Unit: models.FootprintUnit}, nil
}

// ParseSustainability 从回复中提取评分、明细与建议。缺失的字段保持为空，不报错。
func ParseSustainability(text string) models.ParsedSustainability {
	return models.ParsedSustainability{
		Score:       ParseScore(text),
		Breakdown:   ParseBreakdown(text),
		Suggestions: ParseSuggestions(text),
	}
}

// ParseScore 返回第一个整数形式的 "score: <int>"，允许 markdown 强调符号，
// 例如 "**Sustainability Score:** 72"。小数评分与明细一样被跳过。没有时返回 nil。
func ParseScore(text string) *int {
	for _, m := range scorePattern.FindAllStringSubmatch(text, -1) {
		if m[2] != "" {
			continue
		}
		score, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return &score
	}
	return nil
}

// ParseBreakdown 按出现顺序返回所有 "<word>: <integer>" 对，不去重。
// 以 score 结尾的键和小数值不计入。
func ParseBreakdown(text string) []models.BreakdownEntry {
	entries := []models.BreakdownEntry{}
	for _, m := range breakdownPattern.FindAllStringSubmatch(text, -1) {
		if m[3] != "" || strings.HasSuffix(strings.ToLower(m[1]), scoreSuffix) {
			continue
		}
		value, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		entries = append(entries, models.BreakdownEntry{Category: m[1], Value: value})
	}
	return entries
}

// ParseSuggestions 按文档顺序返回所有以 "-" 开头的行，去掉标记和首尾空白。
func ParseSuggestions(text string) []string {
	suggestions := []string{}
	for _, m := range suggestionPattern.FindAllStringSubmatch(text, -1) {
		if s := strings.TrimSpace(m[1]); s != "" {
			suggestions = append(suggestions, s)
		}
	}
	return suggestions
}
