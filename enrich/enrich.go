// Package enrich 将排好序的候选与商品目录元数据合并成对外推荐。
package enrich

import (
	"context"

	"go.uber.org/zap"

	"github.com/rushteam/hybrec/core"
)

// Enricher 是元数据补全器。
// 目录中不存在的商品（回退表引用了已移除的商品）直接丢弃，
// 不产出字段为空的推荐；由此造成的欠额是可接受的 best-effort，
// 通过 Response.Requested 与实际条数之差对调用方可见。
type Enricher struct {
	catalog core.Catalog
	logger  *zap.Logger
}

// NewEnricher 创建补全器；logger 为 nil 时使用 Nop。
func NewEnricher(catalog core.Catalog, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{catalog: catalog, logger: logger}
}

// Enrich 按输入顺序补全目录字段，保持置信度与排序不变。
// 目录批量读失败属于 CollaboratorUnavailable：记录日志并返回错误，
// 由编排层降级为欠额结果，绝不作为请求失败对外暴露。
func (e *Enricher) Enrich(ctx context.Context, items []*core.Item, strategy core.Strategy) ([]core.Recommendation, error) {
	if len(items) == 0 {
		return []core.Recommendation{}, nil
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it != nil {
			ids = append(ids, it.ID)
		}
	}

	products, err := e.catalog.BatchGetProducts(ctx, ids)
	if err != nil {
		e.logger.Warn("enrich: catalog unavailable, dropping batch",
			zap.String("catalog", e.catalog.Name()),
			zap.Int("items", len(ids)),
			zap.Error(err))
		return nil, err
	}

	out := make([]core.Recommendation, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		product, ok := products[it.ID]
		if !ok {
			// 回退表陈旧：商品已从目录移除
			e.logger.Debug("enrich: product missing from catalog", zap.String("product_id", it.ID))
			continue
		}
		out = append(out, core.Recommendation{
			ProductID:  product.ID,
			Title:      product.Title,
			Category:   product.Category,
			Price:      product.Price,
			Rating:     product.Rating,
			Confidence: it.Confidence,
			Strategy:   strategy,
		})
	}
	return out, nil
}
