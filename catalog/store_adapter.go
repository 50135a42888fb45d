// Package catalog 提供商品目录与用户历史的只读访问实现。
package catalog

import (
	"context"
	"encoding/json"

	"github.com/rushteam/hybrec/core"
)

// StoreCatalog 是基于 core.Store 的目录实现。
// key 约定：
//   - 商品元数据：{KeyPrefix}:product:{productID}  （JSON core.Product）
//   - 用户快照：  {KeyPrefix}:user:{userID}        （JSON core.User，含交互历史）
//
// 数据由离线导入任务写入，在线只读。
type StoreCatalog struct {
	store core.Store

	// KeyPrefix 是存储 key 的前缀，默认 "catalog"。
	KeyPrefix string
}

// NewStoreCatalog 创建一个基于 core.Store 的目录。
func NewStoreCatalog(s core.Store, keyPrefix string) *StoreCatalog {
	if keyPrefix == "" {
		keyPrefix = "catalog"
	}
	return &StoreCatalog{
		store:     s,
		KeyPrefix: keyPrefix,
	}
}

func (c *StoreCatalog) Name() string {
	return "store_catalog(" + c.store.Name() + ")"
}

func (c *StoreCatalog) productKey(id string) string { return c.KeyPrefix + ":product:" + id }
func (c *StoreCatalog) userKey(id string) string    { return c.KeyPrefix + ":user:" + id }

// GetUser 获取用户快照；不存在返回 core.ErrUserNotFound。
func (c *StoreCatalog) GetUser(ctx context.Context, userID string) (*core.User, error) {
	data, err := c.store.Get(ctx, c.userKey(userID))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.ErrUserNotFound
		}
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable,
			"catalog: get user: "+err.Error())
	}

	var user core.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable,
			"catalog: decode user: "+err.Error())
	}
	if user.ID == "" {
		user.ID = userID
	}
	return &user, nil
}

// GetProduct 获取商品元数据；不存在返回 core.ErrProductNotFound。
func (c *StoreCatalog) GetProduct(ctx context.Context, productID string) (*core.Product, error) {
	data, err := c.store.Get(ctx, c.productKey(productID))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.ErrProductNotFound
		}
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable,
			"catalog: get product: "+err.Error())
	}

	var product core.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable,
			"catalog: decode product: "+err.Error())
	}
	if product.ID == "" {
		product.ID = productID
	}
	return &product, nil
}

// BatchGetProducts 批量获取商品；缺失/解码失败的 ID 不出现在结果中。
func (c *StoreCatalog) BatchGetProducts(ctx context.Context, productIDs []string) (map[string]*core.Product, error) {
	if len(productIDs) == 0 {
		return make(map[string]*core.Product), nil
	}

	keys := make([]string, 0, len(productIDs))
	keyToID := make(map[string]string, len(productIDs))
	for _, id := range productIDs {
		key := c.productKey(id)
		keys = append(keys, key)
		keyToID[key] = id
	}

	kvs, err := c.store.BatchGet(ctx, keys)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable,
			"catalog: batch get products: "+err.Error())
	}

	result := make(map[string]*core.Product, len(kvs))
	for key, data := range kvs {
		var product core.Product
		if err := json.Unmarshal(data, &product); err != nil {
			continue
		}
		if product.ID == "" {
			product.ID = keyToID[key]
		}
		result[product.ID] = &product
	}
	return result, nil
}

// PutProduct / PutUser 供离线导入与测试写入目录数据。

func (c *StoreCatalog) PutProduct(ctx context.Context, product *core.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.productKey(product.ID), data)
}

func (c *StoreCatalog) PutUser(ctx context.Context, user *core.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.userKey(user.ID), data)
}

// 确保实现 core.Catalog 接口
var _ core.Catalog = (*StoreCatalog)(nil)
