package recall

import (
	"github.com/rushteam/hybrec/artifact"
	"github.com/rushteam/hybrec/core"
)

// FallbackRanker 基于离线预计算的回退表产出候选：
// 全局热度排行与分类目排行。在线只按排除集过滤，不做任何重算，
// 序列本身已按归一化热度分降序存储。
type FallbackRanker struct {
	Table *artifact.FallbackTable
}

// NewFallbackRanker 基于一个已发布的回退表快照创建排行器。
func NewFallbackRanker(table *artifact.FallbackTable) *FallbackRanker {
	return &FallbackRanker{Table: table}
}

func (r *FallbackRanker) Name() string {
	return "recall.fallback"
}

// PopularityRank 返回排除后的全局热度排行（冷启动的终点策略）。
func (r *FallbackRanker) PopularityRank(excluded map[string]struct{}) []core.ScoredID {
	if r.Table == nil {
		return nil
	}
	return filterRanking(r.Table.Popular, excluded)
}

// CategoryRank 返回排除后的类目排行。
// 类目不在表中时返回空序列，编排层据此降级到 popularity。
func (r *FallbackRanker) CategoryRank(category string, excluded map[string]struct{}) []core.ScoredID {
	if r.Table == nil {
		return nil
	}
	return filterRanking(r.Table.CategoryRanking(category), excluded)
}

// PopularityScore 返回某商品在全局排行中的归一化热度分（回填排序用）。
func (r *FallbackRanker) PopularityScore(productID string) float64 {
	if r.Table == nil {
		return 0
	}
	score, _ := r.Table.PopularityScore(productID)
	return score
}

// filterRanking 保持存储顺序，剔除排除集中的 ID。
func filterRanking(seq []core.ScoredID, excluded map[string]struct{}) []core.ScoredID {
	if len(seq) == 0 {
		return nil
	}
	out := make([]core.ScoredID, 0, len(seq))
	for _, s := range seq {
		if _, skip := excluded[s.ID]; skip {
			continue
		}
		out = append(out, s)
	}
	return out
}
