// Package filter 提供候选过滤器：在打分之后、截断之前剔除不应出现的商品。
package filter

import (
	"context"

	"github.com/rushteam/hybrec/core"
)

// Filter 是过滤器的抽象接口，用于判断一个候选是否应该被剔除。
// 返回 true 表示剔除，false 表示保留。
// 约定：过滤器出错时保留候选（推荐覆盖优先于过滤精度）。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被剔除
	ShouldFilter(ctx context.Context, item *core.Item) (bool, error)
}

// Apply 依次执行多个过滤器，返回保留的候选。
// 任一过滤器命中即剔除；过滤器错误按约定跳过该过滤器。
func Apply(ctx context.Context, filters []Filter, items []*core.Item) []*core.Item {
	if len(filters) == 0 || len(items) == 0 {
		return items
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		dropped := false
		for _, f := range filters {
			hit, err := f.ShouldFilter(ctx, item)
			if err != nil {
				continue
			}
			if hit {
				dropped = true
				break
			}
		}
		if !dropped {
			out = append(out, item)
		}
	}
	return out
}
