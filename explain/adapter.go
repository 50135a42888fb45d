package explain

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/hybrec/core"
	"github.com/rushteam/hybrec/metrics"
)

const (
	defaultTimeout       = 3 * time.Second
	defaultMaxConcurrent = 4
)

// Adapter 是解释层的编排器：尝试外部服务，失败分类后走确定性模板。
// 不使用异常式控制流：外部调用是一次有界操作，任何失败都显式落到兜底分支。
//
// 约束：
//   - 每条推荐的解释调用相互独立，慢/失败的一条不影响其余
//   - 只写 Explanation 字段，绝不改动 Confidence 或排序
//   - Service 为 nil（解释关闭）时不发起任何网络调用
type Adapter struct {
	// Service 外部文本生成服务；nil 表示只走模板
	Service core.ExplainService

	// Timeout 单次外部调用的超时，默认 3s
	Timeout time.Duration

	// MaxConcurrent 外部调用的最大并发数，默认 4
	MaxConcurrent int

	Logger *zap.Logger
}

// ExplainAll 为每条推荐填充解释文案，入参顺序即位次。
// 整体 deadline 已超时时直接放弃外部调用，全部走模板。
func (a *Adapter) ExplainAll(ctx context.Context, summary core.HistorySummary, recs []core.Recommendation) []core.Recommendation {
	if len(recs) == 0 {
		return recs
	}
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if a.Service == nil || ctx.Err() != nil {
		for i := range recs {
			recs[i].Explanation = Template(&core.ExplainRequest{
				Summary:        summary,
				Recommendation: recs[i],
				Rank:           i + 1,
			})
		}
		return recs
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxConcurrent := a.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrent)

	for i := range recs {
		rank := i + 1
		idx := i

		eg.Go(func() error {
			req := &core.ExplainRequest{
				Summary:        summary,
				Recommendation: recs[idx],
				Rank:           rank,
			}

			callCtx, cancel := context.WithTimeout(egCtx, timeout)
			defer cancel()

			text, err := a.Service.Explain(callCtx, req)
			text = strings.TrimSpace(text)
			if err != nil || text == "" {
				reason := "empty"
				if err != nil {
					reason = classify(err)
					logger.Debug("explain: falling back to template",
						zap.String("service", a.Service.Name()),
						zap.String("product_id", recs[idx].ProductID),
						zap.String("reason", reason),
						zap.Error(err))
				}
				metrics.ExplainFallbackTotal.WithLabelValues(reason).Inc()
				text = Template(req)
			}
			recs[idx].Explanation = text
			// 兜底成功即可，永不向上返回错误
			return nil
		})
	}
	_ = eg.Wait()
	return recs
}

// classify 将外部调用失败映射为降级原因（打点用）。
func classify(err error) string {
	switch {
	case err == nil:
		return "none"
	case core.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		if domainErr := core.GetDomainError(err); domainErr != nil {
			switch domainErr.Code {
			case core.ErrorCodeQuota:
				return "quota"
			case core.ErrorCodeMalformed:
				return "malformed"
			}
		}
		return "unavailable"
	}
}
