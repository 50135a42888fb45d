// Package recall 提供两类候选打分器：隐向量个性化打分与预计算回退排行。
package recall

import (
	"sort"

	"github.com/rushteam/hybrec/artifact"
	"github.com/rushteam/hybrec/core"
)

// LatentScorer 是基于矩阵分解（ALS）隐向量的个性化打分器。
//
// 核心思想：预测分数 = 用户隐向量 · 物品隐向量
//
// 工程特征：
//   - 全量扫描所有有隐向量的物品（无近似索引）；
//     隐向量表规模有界且离线刷新，全扫描可接受
//   - 点积为普通 IEEE-754 双精度求和，不做溢出特判
//     （向量幅值由训练期正则约束）
//   - 排除与截断由编排层完成，这里只负责打分排序
type LatentScorer struct {
	Model *artifact.FactorModel
}

// NewLatentScorer 基于一个已发布的模型快照创建打分器。
func NewLatentScorer(model *artifact.FactorModel) *LatentScorer {
	return &LatentScorer{Model: model}
}

func (s *LatentScorer) Name() string {
	return "recall.latent"
}

// Score 为已知用户计算所有候选物品的原始分。
// 返回按分数降序的序列，同分按物品 ID 升序，保证确定性。
// 用户无隐向量时返回 nil（编排层据此降级）。
func (s *LatentScorer) Score(userID string) []core.ScoredID {
	if s.Model == nil {
		return nil
	}
	userVector, ok := s.Model.UserVector(userID)
	if !ok || len(userVector) == 0 {
		return nil
	}

	scores := make([]core.ScoredID, 0, len(s.Model.ItemFactors))
	for itemID, itemVector := range s.Model.ItemFactors {
		scores = append(scores, core.ScoredID{
			ID:    itemID,
			Score: dotProduct(userVector, itemVector),
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].ID < scores[j].ID
	})
	return scores
}

// dotProduct 计算两个向量的点积。
func dotProduct(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
