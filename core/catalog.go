package core

import "context"

// Catalog 是商品目录与用户历史的只读访问接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（catalog）实现
//   - 纯读，无副作用；引擎只消费其契约
//   - 读失败（非 NOT_FOUND）属于 CollaboratorUnavailable：
//     引擎以空历史降级处理并记录日志，不向调用方抛出
//
// 实现：
//   - catalog.StoreCatalog 基于 core.Store 实现（Redis / 内存）
type Catalog interface {
	// Name 返回目录后端名称（用于日志/监控）
	Name() string

	// GetUser 获取用户快照；用户不存在返回 NOT_FOUND 领域错误
	GetUser(ctx context.Context, userID string) (*User, error)

	// GetProduct 获取商品元数据；商品不存在返回 NOT_FOUND 领域错误
	GetProduct(ctx context.Context, productID string) (*Product, error)

	// BatchGetProducts 批量获取商品元数据；缺失的 ID 直接不出现在结果里
	BatchGetProducts(ctx context.Context, productIDs []string) (map[string]*Product, error)
}

// 目录错误定义
var (
	// ErrUserNotFound 表示用户在目录中不存在
	ErrUserNotFound = NewDomainError(ModuleCatalog, ErrorCodeNotFound, "catalog: user not found")

	// ErrProductNotFound 表示商品在目录中不存在
	ErrProductNotFound = NewDomainError(ModuleCatalog, ErrorCodeNotFound, "catalog: product not found")
)
