package scoring

import (
	"fmt"
	"strings"

	"ecofix/backend/go/internal/models"
)

// Summarize 为每条记录生成一行摘要并以换行连接。空输入得到空字符串。
func Summarize(records []models.ActivityRecord) string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, r.Summary())
	}
	return strings.Join(lines, "\n")
}

// SustainabilityPrompt 把活动摘要嵌入固定的评分提示词模板。
func SustainabilityPrompt(summary string) string {
	return fmt.Sprintf("Calculate a sustainability score (0-100) for the following activities:\n%s\n"+
		"Provide a detailed breakdown of the score and suggestions for improvement.", summary)
}

// FootprintPrompt 生成单条活动的碳足迹提示词。
func FootprintPrompt(record models.ActivityRecord) string {
	return fmt.Sprintf("Calculate the carbon footprint for the following activities: %s\n"+
		"State the total as a number followed by \"kg CO2e\".", record.Summary())
}

// SimulationPrompt 生成绿色行动模拟的提示词。
func SimulationPrompt(action GreenAction, summary string) string {
	return fmt.Sprintf("A user is considering the following green action: %s.\n"+
		"Their current activities are:\n%s\n"+
		"Estimate the sustainability score (0-100) they would reach after adopting it. "+
		"Provide a detailed breakdown of the score and suggestions for improvement.", action.Label(), summary)
}
