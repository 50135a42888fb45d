package core

import "context"

// ExplainService 是推荐解释文本生成的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（service）实现
//   - 这是请求链路上唯一允许阻塞网络 I/O 的环节，调用必须带超时
//   - 任何失败分类（超时/配额/格式非法）都由 explain.Adapter 的
//     确定性模板兜底，绝不向上传播
//
// 实现：
//   - service.LLMClient 实现此接口（OpenAI 兼容 chat completions）
type ExplainService interface {
	// Name 返回服务名称（用于日志/监控）
	Name() string

	// Explain 为单条推荐生成一句解释文案。
	// 成功时返回去除首尾空白后的原文，不做其他后处理。
	Explain(ctx context.Context, req *ExplainRequest) (string, error)

	// Close 关闭连接/释放资源
	Close() error
}

// ExplainRequest 是解释服务的结构化入参：用户历史摘要 + 候选商品字段。
type ExplainRequest struct {
	Summary        HistorySummary
	Recommendation Recommendation
	// Rank 是该条推荐在结果中的位次（从 1 开始），用于措辞分档。
	Rank int
}

// 解释服务错误定义
var (
	// ErrExplainTimeout 表示解释服务调用超时
	ErrExplainTimeout = NewDomainError(ModuleExplain, ErrorCodeTimeout, "explain: request timed out")

	// ErrExplainQuota 表示解释服务配额受限
	ErrExplainQuota = NewDomainError(ModuleExplain, ErrorCodeQuota, "explain: quota exceeded")

	// ErrExplainMalformed 表示解释服务响应格式非法
	ErrExplainMalformed = NewDomainError(ModuleExplain, ErrorCodeMalformed, "explain: malformed response")

	// ErrExplainUnavailable 表示解释服务不可用
	ErrExplainUnavailable = NewDomainError(ModuleExplain, ErrorCodeUnavailable, "explain: service unavailable")
)
