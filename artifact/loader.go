package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rushteam/hybrec/core"
)

// 加载失败统一包装为 artifact/UNAVAILABLE 领域错误：
// 工件不可用时进程不应对外服务，由启动方决定退出。
func unavailable(format string, args ...any) error {
	return core.NewDomainError(core.ModuleArtifact, core.ErrorCodeUnavailable,
		fmt.Sprintf("artifact: "+format, args...))
}

// modelDoc 是模型工件的序列化形态（JSON）。
type modelDoc struct {
	Version     string               `json:"version"`
	UserFactors map[string][]float64 `json:"user_factors"`
	ItemFactors map[string][]float64 `json:"item_factors"`
	Rank        int                  `json:"rank"`
}

// fallbackDoc 是回退表工件的序列化形态（JSON）。
type fallbackDoc struct {
	Popular    []core.ScoredID            `json:"top_popular"`
	Categories map[string][]core.ScoredID `json:"categories"`
}

// LoadFiles 从本地 JSON 文件加载一个快照（离线任务的标准产出形态）。
func LoadFiles(modelPath, fallbackPath string) (*Snapshot, error) {
	modelData, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, unavailable("read model %s: %v", modelPath, err)
	}
	fallbackData, err := os.ReadFile(fallbackPath)
	if err != nil {
		return nil, unavailable("read fallback %s: %v", fallbackPath, err)
	}
	return build(modelData, fallbackData)
}

// LoadStore 从 Store 加载一个快照。
// key 约定：
//   - {prefix}:model     模型工件 JSON
//   - {prefix}:fallback  回退表工件 JSON
//   - {prefix}:popular   （可选）热度 zset，存在时优先于 JSON 中的 top_popular
//
// zset 路径方便离线任务直接用 ZAdd 刷新热度排行。
func LoadStore(ctx context.Context, s core.Store, keyPrefix string) (*Snapshot, error) {
	if keyPrefix == "" {
		keyPrefix = "artifact"
	}

	modelData, err := s.Get(ctx, keyPrefix+":model")
	if err != nil {
		return nil, unavailable("load model from %s: %v", s.Name(), err)
	}
	fallbackData, err := s.Get(ctx, keyPrefix+":fallback")
	if err != nil {
		return nil, unavailable("load fallback from %s: %v", s.Name(), err)
	}

	snap, err := build(modelData, fallbackData)
	if err != nil {
		return nil, err
	}

	// 热度 zset 优先（按分数降序读取）
	if kv, ok := s.(core.KeyValueStore); ok {
		members, err := kv.ZRange(ctx, keyPrefix+":popular", 0, -1)
		if err == nil && len(members) > 0 {
			popular := make([]core.ScoredID, 0, len(members))
			for _, m := range members {
				score, err := kv.ZScore(ctx, keyPrefix+":popular", m)
				if err != nil {
					continue
				}
				popular = append(popular, core.ScoredID{ID: m, Score: score})
			}
			snap.Fallback.Popular = popular
			snap.Fallback.normalize()
		}
	}

	return snap, nil
}

// build 反序列化、校验并发布快照。
func build(modelData, fallbackData []byte) (*Snapshot, error) {
	var md modelDoc
	if err := json.Unmarshal(modelData, &md); err != nil {
		return nil, unavailable("parse model: %v", err)
	}
	var fd fallbackDoc
	if err := json.Unmarshal(fallbackData, &fd); err != nil {
		return nil, unavailable("parse fallback: %v", err)
	}

	model := &FactorModel{
		UserFactors: md.UserFactors,
		ItemFactors: md.ItemFactors,
		Rank:        md.Rank,
	}
	if err := model.Validate(); err != nil {
		return nil, unavailable("validate model: %v", err)
	}
	if len(model.ItemFactors) == 0 && len(fd.Popular) == 0 {
		return nil, unavailable("empty artifacts: no item factors and no popularity ranking")
	}

	fallback := &FallbackTable{
		Popular:    fd.Popular,
		Categories: fd.Categories,
	}
	fallback.normalize()

	return &Snapshot{
		Version:  md.Version,
		Model:    model,
		Fallback: fallback,
	}, nil
}
