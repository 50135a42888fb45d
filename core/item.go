package core

import "github.com/rushteam/hybrec/pkg/utils"

// Item 是推荐链路中的统一承载结构：原始分、置信度、标签。
// Score 是策略内部的原始分（隐向量点积、热度分等）；
// Confidence 是归一化后的对外置信度，语义为"策略内相对排名"，
// 不同 Strategy 之间的 Confidence 不可比较（这是本系统最重要的约定）。
type Item struct {
	ID         string
	Score      float64
	Confidence float64
	Labels     map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// GetLabel 获取 Label。
func (it *Item) GetLabel(key string) (utils.Label, bool) {
	if it.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := it.Labels[key]
	return lbl, ok
}

// ScoredID 是 (物品 ID, 分数) 二元组，召回层的标准输出形态。
type ScoredID struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}
