// Package artifact 承载离线训练产出的模型工件：隐向量模型与热度回退表。
// 工件在进程启动时加载一次，之后只读；热更新通过整体快照的指针交换完成，
// 绝不原地修改已发布的结构，因此多请求并发读无需加锁。
package artifact

import (
	"fmt"
	"sync/atomic"

	"github.com/rushteam/hybrec/core"
)

// FactorModel 是离线训练（ALS 等矩阵分解）产出的隐向量表。
// 不变量：所有向量长度一致，等于 Rank。
type FactorModel struct {
	UserFactors map[string][]float64 `json:"user_factors"`
	ItemFactors map[string][]float64 `json:"item_factors"`
	Rank        int                  `json:"rank"`
}

// Validate 校验向量长度一致性。Rank 为 0 时从首个向量推断。
func (m *FactorModel) Validate() error {
	if m == nil {
		return fmt.Errorf("factor model is nil")
	}
	if m.Rank <= 0 {
		for _, vec := range m.ItemFactors {
			m.Rank = len(vec)
			break
		}
	}
	if m.Rank <= 0 {
		for _, vec := range m.UserFactors {
			m.Rank = len(vec)
			break
		}
	}
	for id, vec := range m.UserFactors {
		if len(vec) != m.Rank {
			return fmt.Errorf("user factor %q: length %d, want %d", id, len(vec), m.Rank)
		}
	}
	for id, vec := range m.ItemFactors {
		if len(vec) != m.Rank {
			return fmt.Errorf("item factor %q: length %d, want %d", id, len(vec), m.Rank)
		}
	}
	return nil
}

// UserVector 返回用户隐向量。
func (m *FactorModel) UserVector(userID string) ([]float64, bool) {
	if m == nil {
		return nil, false
	}
	vec, ok := m.UserFactors[userID]
	return vec, ok
}

// HasUser 检查用户是否有已训练的隐向量。
func (m *FactorModel) HasUser(userID string) bool {
	_, ok := m.UserVector(userID)
	return ok
}

// FallbackTable 是离线预计算的回退排行：全局热度 + 分类目热度。
// 序列按分数降序存储，分数已归一化到 [0,1]；在线只过滤不重算。
// 排行会随时间陈旧，这是已接受的降级（依赖离线任务周期刷新），不是错误。
type FallbackTable struct {
	Popular    []core.ScoredID            `json:"top_popular"`
	Categories map[string][]core.ScoredID `json:"categories"`

	// scoreIndex 是 Popular 的 ID -> score 索引，用于回填时的热度查询。
	scoreIndex map[string]float64
}

// NewFallbackTable 构造回退表并完成归一化（手工装配与测试用；
// 线上路径由加载器在发布前构造）。
func NewFallbackTable(popular []core.ScoredID, categories map[string][]core.ScoredID) *FallbackTable {
	t := &FallbackTable{Popular: popular, Categories: categories}
	t.normalize()
	return t
}

// normalize 钳制分数到 [0,1] 并重建索引；加载器在发布前调用一次。
func (t *FallbackTable) normalize() {
	clamp := func(seq []core.ScoredID) {
		var max float64
		for _, s := range seq {
			if s.Score > max {
				max = s.Score
			}
		}
		for i := range seq {
			if max > 1 {
				seq[i].Score /= max
			}
			if seq[i].Score < 0 {
				seq[i].Score = 0
			}
			if seq[i].Score > 1 {
				seq[i].Score = 1
			}
		}
	}
	clamp(t.Popular)
	for _, seq := range t.Categories {
		clamp(seq)
	}

	t.scoreIndex = make(map[string]float64, len(t.Popular))
	for _, s := range t.Popular {
		t.scoreIndex[s.ID] = s.Score
	}
}

// PopularityScore 返回全局排行中某商品的归一化热度分；不在排行中返回 (0, false)。
func (t *FallbackTable) PopularityScore(productID string) (float64, bool) {
	if t == nil || t.scoreIndex == nil {
		return 0, false
	}
	score, ok := t.scoreIndex[productID]
	return score, ok
}

// CategoryRanking 返回某类目的排行序列；类目不存在返回 nil。
func (t *FallbackTable) CategoryRanking(category string) []core.ScoredID {
	if t == nil {
		return nil
	}
	return t.Categories[category]
}

// Snapshot 是一组同时发布的工件：同一个离线训练批次的模型与回退表。
type Snapshot struct {
	Version  string
	Model    *FactorModel
	Fallback *FallbackTable
}

// ErrNoSnapshot 表示尚无可用快照（启动期 fatal，进程不应对外服务）。
var ErrNoSnapshot = core.NewDomainError(core.ModuleArtifact, core.ErrorCodeUnavailable, "artifact: no snapshot loaded")

// Holder 持有当前生效的快照，通过原子指针交换支持热更新。
type Holder struct {
	cur atomic.Pointer[Snapshot]
}

// NewHolder 创建一个 Holder；snap 可为 nil（此时 Snapshot() 返回错误）。
func NewHolder(snap *Snapshot) *Holder {
	h := &Holder{}
	if snap != nil {
		h.cur.Store(snap)
	}
	return h
}

// Snapshot 返回当前生效的快照。
func (h *Holder) Snapshot() (*Snapshot, error) {
	snap := h.cur.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Swap 原子地发布一个新快照，旧快照对仍在使用它的请求保持有效。
func (h *Holder) Swap(snap *Snapshot) {
	h.cur.Store(snap)
}
