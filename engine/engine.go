// Package engine 实现混合推荐的编排：策略选择、候选池组装、
// 置信度分配、排序截断、元数据补全与解释生成。
package engine

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/rushteam/hybrec/artifact"
	"github.com/rushteam/hybrec/core"
	"github.com/rushteam/hybrec/enrich"
	"github.com/rushteam/hybrec/explain"
	"github.com/rushteam/hybrec/filter"
	"github.com/rushteam/hybrec/metrics"
	"github.com/rushteam/hybrec/pkg/utils"
	"github.com/rushteam/hybrec/recall"
)

const (
	// DefaultMinTopK / DefaultMaxTopK 是 TopK 的钳制边界。
	DefaultMinTopK = 1
	DefaultMaxTopK = 20

	// DefaultMinHistory 是走个性化策略所需的最小交互数。
	DefaultMinHistory = 5

	// summaryProducts / summaryTitles 控制历史摘要的规模。
	summaryProducts = 5
	summaryTitles   = 3
)

// Engine 持有所有协作方，自身无请求级可变状态，可安全并发使用。
// 工件快照在进程启动时加载一次，请求期间只读。
type Engine struct {
	artifacts *artifact.Holder
	catalog   core.Catalog
	enricher  *enrich.Enricher
	explainer *explain.Adapter
	filters   []filter.Filter
	logger    *zap.Logger

	minTopK    int
	maxTopK    int
	minHistory int
}

// Option 是 Engine 的配置选项。
type Option func(*Engine)

// WithLogger 注入日志器。
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithFilters 注入候选过滤器（下架名单、规则等）。
func WithFilters(filters ...filter.Filter) Option {
	return func(e *Engine) { e.filters = append(e.filters, filters...) }
}

// WithExplainService 注入外部解释服务；不设置则解释只走模板。
func WithExplainService(svc core.ExplainService, adapterOpts ...func(*explain.Adapter)) Option {
	return func(e *Engine) {
		e.explainer.Service = svc
		for _, opt := range adapterOpts {
			opt(e.explainer)
		}
	}
}

// WithTopKBounds 调整 TopK 钳制边界。
func WithTopKBounds(minTopK, maxTopK int) Option {
	return func(e *Engine) {
		if minTopK > 0 {
			e.minTopK = minTopK
		}
		if maxTopK >= e.minTopK {
			e.maxTopK = maxTopK
		}
	}
}

// WithMinHistory 调整个性化策略的最小交互数门槛。
func WithMinHistory(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.minHistory = n
		}
	}
}

// New 创建推荐引擎。holder 与 catalog 是必需协作方。
func New(holder *artifact.Holder, cat core.Catalog, opts ...Option) *Engine {
	e := &Engine{
		artifacts:  holder,
		catalog:    cat,
		logger:     zap.NewNop(),
		explainer:  &explain.Adapter{},
		minTopK:    DefaultMinTopK,
		maxTopK:    DefaultMaxTopK,
		minHistory: DefaultMinHistory,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.enricher = enrich.NewEnricher(cat, e.logger)
	e.explainer.Logger = e.logger
	return e
}

// Recommend 处理一次推荐请求。
//
// 返回约定：
//   - 工件不可用（启动期故障）是唯一让 resp 为 nil 的错误
//   - 目录完全无法解析 user_id 时，resp 仍然有效（popularity 推荐），
//     同时返回 core.ErrUserNotApplicable 哨兵作为信号，调用方可选择性处理
//   - 其他协作方故障一律请求内降级，不对外暴露
func (e *Engine) Recommend(ctx context.Context, req core.Request) (*core.Response, error) {
	if req.UserID == "" {
		return nil, core.NewDomainError("engine", core.ErrorCodeInvalidInput, "engine: empty user id")
	}

	snap, err := e.artifacts.Snapshot()
	if err != nil {
		return nil, err
	}

	topK := clamp(req.TopK, e.minTopK, e.maxTopK)
	user, userApplicable := e.resolveUser(ctx, req.UserID)

	items, strategy := e.selectAndScore(ctx, snap, user, topK)

	recs, err := e.enricher.Enrich(ctx, items, strategy)
	if err != nil {
		// 补全失败降级为欠额结果，不作为请求失败
		recs = []core.Recommendation{}
	}

	if req.WithExplanations && len(recs) > 0 {
		summary := e.historySummary(ctx, user)
		recs = e.explainer.ExplainAll(ctx, summary, recs)
	}

	resp := &core.Response{
		UserID:          req.UserID,
		Strategy:        strategy,
		Requested:       topK,
		HistorySize:     user.InteractionCount(),
		Recommendations: recs,
	}

	metrics.RequestsTotal.WithLabelValues(string(strategy)).Inc()
	if resp.Underfilled() {
		metrics.UnderfillTotal.Inc()
	}

	if !userApplicable {
		return resp, core.ErrUserNotApplicable
	}
	return resp, nil
}

// resolveUser 获取用户快照。
// 用户不存在 → 空历史冷启动（不是错误，但返回 applicable=false 作为信号）；
// 目录读失败 → CollaboratorUnavailable，记录日志并以空历史降级。
func (e *Engine) resolveUser(ctx context.Context, userID string) (user *core.User, applicable bool) {
	got, err := e.catalog.GetUser(ctx, userID)
	switch {
	case err == nil:
		return got, true
	case core.IsNotFound(err):
		return &core.User{ID: userID}, false
	default:
		e.logger.Warn("engine: catalog unavailable, substituting empty history",
			zap.String("user_id", userID),
			zap.Error(err))
		metrics.CollaboratorErrorTotal.WithLabelValues("get_user").Inc()
		return &core.User{ID: userID}, true
	}
}

// selectAndScore 按固定顺序选择策略并组装候选池。
// 任一策略产出空池则落到下一个更弱的策略；popularity 也为空时返回 none。
func (e *Engine) selectAndScore(ctx context.Context, snap *artifact.Snapshot, user *core.User, topK int) ([]*core.Item, core.Strategy) {
	ranker := recall.NewFallbackRanker(snap.Fallback)
	owned := user.HistorySet()

	// 1. personalized：有隐向量且历史足够
	if snap.Model.HasUser(user.ID) && user.InteractionCount() >= e.minHistory {
		scored := recall.NewLatentScorer(snap.Model).Score(user.ID)
		if items := e.assemble(ctx, scored, owned, topK, ranker, core.StrategyPersonalized); len(items) > 0 {
			return items, core.StrategyPersonalized
		}
	}

	// 2. content：有历史则按主类目走回退排行
	if user.InteractionCount() > 0 {
		if category := e.dominantCategory(ctx, user); category != "" {
			scored := ranker.CategoryRank(category, nil)
			if items := e.assemble(ctx, scored, owned, topK, ranker, core.StrategyContent); len(items) > 0 {
				return items, core.StrategyContent
			}
		}
	}

	// 3. popularity：冷启动终点策略
	scored := ranker.PopularityRank(nil)
	if items := e.assemble(ctx, scored, owned, topK, ranker, core.StrategyPopularity); len(items) > 0 {
		return items, core.StrategyPopularity
	}

	return nil, core.StrategyNone
}

// assemble 组装单一策略的候选池：
// 排除已交互商品；排除导致不足 topK 时，把已交互商品按全局热度分
// 升序回填补足配额（推荐覆盖优先于新颖性）；随后执行配置的过滤器、
// 分配置信度、按置信度降序 + ID 升序排序并截断。
func (e *Engine) assemble(ctx context.Context, scored []core.ScoredID, owned map[string]struct{}, topK int, ranker *recall.FallbackRanker, strategy core.Strategy) []*core.Item {
	if len(scored) == 0 {
		return nil
	}

	pool := make([]core.ScoredID, 0, len(scored))
	var ownedCandidates []core.ScoredID
	for _, s := range scored {
		if _, skip := owned[s.ID]; skip {
			ownedCandidates = append(ownedCandidates, s)
			continue
		}
		pool = append(pool, s)
	}

	if len(pool) < topK && len(ownedCandidates) > 0 {
		sort.Slice(ownedCandidates, func(i, j int) bool {
			pi, pj := ranker.PopularityScore(ownedCandidates[i].ID), ranker.PopularityScore(ownedCandidates[j].ID)
			if pi != pj {
				return pi < pj
			}
			return ownedCandidates[i].ID < ownedCandidates[j].ID
		})
		for _, s := range ownedCandidates {
			if len(pool) >= topK {
				break
			}
			pool = append(pool, s)
		}
	}

	items := make([]*core.Item, 0, len(pool))
	for _, s := range pool {
		it := core.NewItem(s.ID)
		it.Score = s.Score
		it.PutLabel("recall_source", utils.Label{Value: sourceName(strategy), Source: "recall"})
		it.PutLabel("strategy", utils.Label{Value: string(strategy), Source: "engine"})
		items = append(items, it)
	}

	items = filter.Apply(ctx, e.filters, items)
	if len(items) == 0 {
		return nil
	}

	assignConfidence(items, strategy)

	sort.Slice(items, func(i, j int) bool {
		if items[i].Confidence != items[j].Confidence {
			return items[i].Confidence > items[j].Confidence
		}
		return items[i].ID < items[j].ID
	})

	if len(items) > topK {
		items = items[:topK]
	}
	return items
}

// assignConfidence 分配置信度。
//
// 这是本系统最重要的设计决策：Confidence 是"策略内相对排名"，
// 不是跨策略可比的概率。
//   - personalized：原始点积分对候选池做 min-max 归一化（池顶=1.0，池底=0.0；
//     池内同分退化时统一为 1.0）
//   - content/popularity：回退表存储的归一化热度分，上限封顶 0.5，
//     显式标记低于个性化命中的确定性
func assignConfidence(items []*core.Item, strategy core.Strategy) {
	if strategy == core.StrategyPersonalized {
		minScore, maxScore := items[0].Score, items[0].Score
		for _, it := range items[1:] {
			if it.Score < minScore {
				minScore = it.Score
			}
			if it.Score > maxScore {
				maxScore = it.Score
			}
		}
		span := maxScore - minScore
		for _, it := range items {
			if span == 0 {
				it.Confidence = 1.0
				continue
			}
			it.Confidence = (it.Score - minScore) / span
			if it.Confidence < 0 {
				it.Confidence = 0
			}
		}
		return
	}

	for _, it := range items {
		conf := it.Score
		if conf > 0.5 {
			conf = 0.5
		}
		if conf < 0 {
			conf = 0
		}
		it.Confidence = conf
	}
}

// dominantCategory 从用户交互历史推导主类目（出现频次最高；
// 平频取字典序最小，保证确定性）。目录读失败按 CollaboratorUnavailable
// 降级，返回空串让编排层落到 popularity。
func (e *Engine) dominantCategory(ctx context.Context, user *core.User) string {
	products, err := e.catalog.BatchGetProducts(ctx, user.History)
	if err != nil {
		e.logger.Warn("engine: catalog unavailable for history categories",
			zap.String("user_id", user.ID),
			zap.Error(err))
		metrics.CollaboratorErrorTotal.WithLabelValues("batch_get_products").Inc()
		return ""
	}

	counts := make(map[string]int)
	for _, id := range user.History {
		if p, ok := products[id]; ok && p.Category != "" {
			counts[p.Category]++
		}
	}

	var best string
	var bestCount int
	for category, count := range counts {
		if count > bestCount || (count == bestCount && (best == "" || category < best)) {
			best = category
			bestCount = count
		}
	}
	return best
}

// historySummary 构造解释层需要的用户历史摘要（最近若干条交互的标题与主类目）。
// 目录读失败时返回只含规模的摘要，解释层模板自会兜底。
func (e *Engine) historySummary(ctx context.Context, user *core.User) core.HistorySummary {
	summary := core.HistorySummary{
		UserID: user.ID,
		Size:   user.InteractionCount(),
	}
	if user.InteractionCount() == 0 {
		return summary
	}

	// 历史是时间序，最近的在尾部
	recent := user.History
	if len(recent) > summaryProducts {
		recent = recent[len(recent)-summaryProducts:]
	}

	products, err := e.catalog.BatchGetProducts(ctx, recent)
	if err != nil {
		metrics.CollaboratorErrorTotal.WithLabelValues("batch_get_products").Inc()
		return summary
	}

	counts := make(map[string]int)
	for i := len(recent) - 1; i >= 0; i-- {
		p, ok := products[recent[i]]
		if !ok {
			continue
		}
		if len(summary.RecentTitles) < summaryTitles && p.Title != "" {
			summary.RecentTitles = append(summary.RecentTitles, p.Title)
		}
		if p.Category != "" {
			counts[p.Category]++
		}
	}
	var bestCount int
	for category, count := range counts {
		if count > bestCount || (count == bestCount && (summary.TopCategory == "" || category < summary.TopCategory)) {
			summary.TopCategory = category
			bestCount = count
		}
	}
	return summary
}

func sourceName(strategy core.Strategy) string {
	switch strategy {
	case core.StrategyPersonalized:
		return "latent"
	case core.StrategyContent:
		return "category"
	case core.StrategyPopularity:
		return "popularity"
	default:
		return "none"
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
