// Package explain 为推荐结果生成解释文案：优先外部文本生成服务，
// 失败时用确定性模板兜底。模板路径永不失败、永不触网。
package explain

import (
	"fmt"
	"strings"

	"github.com/rushteam/hybrec/core"
)

// categoryPhrases 是类目感知的固定措辞表。
var categoryPhrases = map[string]string{
	"Electronics":              "perfect for tech enthusiasts looking for quality electronics",
	"Books":                    "great addition to your reading collection",
	"Home & Kitchen":           "ideal for enhancing your home experience",
	"Sports & Outdoors":        "excellent choice for active lifestyle",
	"Clothing":                 "stylish option that matches current trends",
	"Tools & Home Improvement": "practical tool for your projects",
}

// Template 生成确定性解释文案。
// 文案由位次、策略语境、置信度措辞、类目措辞与评分补语拼接而成；
// 相同输入永远得到相同输出。
func Template(req *core.ExplainRequest) string {
	rec := req.Recommendation

	var rankText string
	switch {
	case req.Rank == 1:
		rankText = "Our top recommendation: "
	case req.Rank == 2:
		rankText = "Another excellent choice: "
	case req.Rank == 3:
		rankText = "Also recommended: "
	}

	contextText := strategyContext(rec.Strategy, req.Summary)
	confidenceText := confidenceWording(rec.Confidence)
	categoryText := categoryWording(rec.Category)

	explanation := fmt.Sprintf("%s%sthis %s is %s as a %s.%s",
		rankText, contextText, rec.Title, confidenceText, categoryText, ratingClause(rec.Rating))

	if explanation == "" {
		return "Recommended for you."
	}
	return strings.ToUpper(explanation[:1]) + explanation[1:]
}

// strategyContext 根据命中策略给出语境引导。
func strategyContext(strategy core.Strategy, summary core.HistorySummary) string {
	switch strategy {
	case core.StrategyPersonalized:
		if len(summary.RecentTitles) > 0 {
			return fmt.Sprintf("based on your recent purchases of %s, ",
				strings.Join(summary.RecentTitles[:min(2, len(summary.RecentTitles))], ", "))
		}
		return "based on your purchase history, "
	case core.StrategyContent:
		if summary.TopCategory != "" {
			return fmt.Sprintf("because you shop %s, ", summary.TopCategory)
		}
		return "based on the categories you browse, "
	case core.StrategyPopularity:
		return "popular with shoppers right now, "
	default:
		return ""
	}
}

func confidenceWording(confidence float64) string {
	switch {
	case confidence > 0.8:
		return "highly recommended"
	case confidence > 0.6:
		return "strongly recommended"
	case confidence > 0.4:
		return "recommended"
	default:
		return "suggested"
	}
}

func categoryWording(category string) string {
	if phrase, ok := categoryPhrases[category]; ok {
		return phrase
	}
	if category == "" {
		return "quality product"
	}
	return fmt.Sprintf("quality %s product", strings.ToLower(category))
}

func ratingClause(rating *float64) string {
	if rating == nil {
		return ""
	}
	switch {
	case *rating >= 4.5:
		return " This top-rated product has excellent customer reviews."
	case *rating >= 4.0:
		return " This well-rated product is popular among customers."
	case *rating >= 3.5:
		return " This product has good customer feedback."
	default:
		return ""
	}
}
