package filter

import (
	"context"
	"encoding/json"

	"github.com/rushteam/hybrec/core"
)

// DelistedFilter 剔除已下架/停售的商品。
// 回退表是点时刻快照，商品下架后仍可能出现在排行里，
// 此过滤器用运营维护的黑名单兜住这部分陈旧数据。
//
// 数据源优先级：
//  1. 内存中的 IDs 列表（配置注入）
//  2. Store 中的 JSON 数组（运营实时维护），key 默认 "catalog:delisted"
type DelistedFilter struct {
	// IDs 是内存中的下架商品 ID 列表
	IDs []string

	// Store 用于从存储中读取下架名单（可选）
	Store core.Store

	// Key 是 Store 中的名单 key（可选）
	Key string
}

func (f *DelistedFilter) Name() string {
	return "filter.delisted"
}

func (f *DelistedFilter) ShouldFilter(ctx context.Context, item *core.Item) (bool, error) {
	if item == nil {
		return true, nil
	}

	for _, id := range f.IDs {
		if item.ID == id {
			return true, nil
		}
	}

	if f.Store != nil {
		key := f.Key
		if key == "" {
			key = "catalog:delisted"
		}
		data, err := f.Store.Get(ctx, key)
		if err != nil {
			if core.IsStoreNotFound(err) {
				return false, nil
			}
			return false, err
		}
		var delisted []string
		if err := json.Unmarshal(data, &delisted); err != nil {
			return false, err
		}
		for _, id := range delisted {
			if item.ID == id {
				return true, nil
			}
		}
	}

	return false, nil
}
