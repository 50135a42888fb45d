package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误分类与 §恢复策略 对应：
//   - artifact/UNAVAILABLE：模型工件加载失败，进程不应对外服务（fatal）
//   - catalog/UNAVAILABLE：目录读失败，请求内降级为空历史（popularity 策略）
//   - explain/TIMEOUT|QUOTA|MALFORMED：解释服务失败，本地模板兜底
//   - */NOT_FOUND：资源不存在，按调用方语义处理
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "UNAVAILABLE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "artifact", "catalog", "explain"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNotFound     = "NOT_FOUND"     // 资源不存在
	ErrorCodeUnavailable  = "UNAVAILABLE"   // 服务不可用
	ErrorCodeTimeout      = "TIMEOUT"       // 调用超时
	ErrorCodeQuota        = "QUOTA"         // 配额受限
	ErrorCodeMalformed    = "MALFORMED"     // 响应格式非法
	ErrorCodeInvalidInput = "INVALID_INPUT" // 输入无效
)

// 模块名称常量
const (
	ModuleArtifact = "artifact" // 模型工件模块
	ModuleCatalog  = "catalog"  // 商品目录模块
	ModuleExplain  = "explain"  // 推荐解释模块
	ModuleStore    = "store"    // 存储模块
)

// ErrUserNotApplicable 表示目录中完全无法解析该 user_id。
// 引擎在这种情况下仍会返回 popularity 推荐（冷启动不是错误），
// 此哨兵只作为"信号"与结果一同返回，调用方可选择性处理。
var ErrUserNotApplicable = NewDomainError(ModuleCatalog, ErrorCodeNotFound, "catalog: user not applicable")

func hasCode(err error, module, code string) bool {
	domainErr := GetDomainError(err)
	if domainErr == nil {
		return false
	}
	if module != "" && domainErr.Module != module {
		return false
	}
	return domainErr.Code == code
}

// IsNotFound 检查错误是否为 NOT_FOUND。
func IsNotFound(err error) bool {
	return hasCode(err, "", ErrorCodeNotFound)
}

// IsUnavailable 检查错误是否为 UNAVAILABLE。
func IsUnavailable(err error) bool {
	return hasCode(err, "", ErrorCodeUnavailable)
}

// IsTimeout 检查错误是否为 TIMEOUT。
func IsTimeout(err error) bool {
	return hasCode(err, "", ErrorCodeTimeout)
}

// IsArtifactUnavailable 检查错误是否为工件加载失败（启动期 fatal）。
func IsArtifactUnavailable(err error) bool {
	return hasCode(err, ModuleArtifact, ErrorCodeUnavailable)
}

// IsExplainError 检查错误是否来自解释服务（超时/配额/格式非法均可模板兜底）。
func IsExplainError(err error) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Module == ModuleExplain
}
