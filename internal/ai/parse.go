package ai

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultRiskScore 解析失败时的默认中等风险分
const DefaultRiskScore = 5

// 推荐结论取值
const (
	RecommendationApprove = "approve"
	RecommendationReject  = "reject"
	RecommendationReview  = "review"
)

var riskScorePattern = regexp.MustCompile(`(?i)risk score.*?(\d+)`)

// ParseRiskScore 从分析文本中提取1-10的风险分
// 取第一处 "risk score ... <数字>" 匹配；数字越界或无匹配时返回默认分。
// 这是尽力而为的文本挖掘，解析失败不视为错误。
func ParseRiskScore(analysisText string) int {
	match := riskScorePattern.FindStringSubmatch(analysisText)
	if match == nil {
		return DefaultRiskScore
	}

	score, err := strconv.Atoi(match[1])
	if err != nil || score < 1 || score > 10 {
		return DefaultRiskScore
	}
	return score
}

// ParseRecommendation 从分析文本中提取推荐结论
// 按 approve、reject、review 的固定顺序做大小写不敏感的关键词匹配，
// 先命中者生效，与关键词在文中的位置无关；无命中时返回 review。
func ParseRecommendation(analysisText string) string {
	lower := strings.ToLower(analysisText)

	if strings.Contains(lower, RecommendationApprove) {
		return RecommendationApprove
	}
	if strings.Contains(lower, RecommendationReject) {
		return RecommendationReject
	}
	if strings.Contains(lower, RecommendationReview) {
		return RecommendationReview
	}
	return RecommendationReview
}
