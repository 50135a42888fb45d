package core

// Strategy 标识推荐结果由哪条策略产出，闭集。
// Confidence 的语义随 Strategy 变化，跨策略不可比较。
type Strategy string

const (
	StrategyPersonalized Strategy = "personalized" // 隐向量点积（ALS 离线训练）
	StrategyContent      Strategy = "content"      // 主类目内的热度排行
	StrategyPopularity   Strategy = "popularity"   // 全局热度排行（冷启动兜底）
	StrategyNone         Strategy = "none"         // 所有策略均无候选，空结果
)

// Request 是一次推荐请求。
type Request struct {
	UserID string
	// TopK 期望返回的条数，越界会被钳制到 [MinTopK, MaxTopK]，不拒绝请求。
	TopK int
	// WithExplanations 为 true 时为每条推荐生成解释文案。
	WithExplanations bool
}

// Recommendation 是补全目录元数据后的单条推荐。
type Recommendation struct {
	ProductID   string   `json:"product_id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Confidence  float64  `json:"confidence"` // [0,1]，策略内相对置信度
	Strategy    Strategy `json:"strategy"`
	Explanation string   `json:"explanation,omitempty"`
}

// Response 是一次推荐请求的完整结果。
// Requested 与 len(Recommendations) 的差即欠额（under-fill），
// 欠额是数据而非错误，由调用方显式处理。
type Response struct {
	UserID          string           `json:"user_id"`
	Strategy        Strategy         `json:"strategy"`
	Requested       int              `json:"requested"`
	HistorySize     int              `json:"user_history_size"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Underfilled 返回结果是否欠额。
func (r *Response) Underfilled() bool {
	return len(r.Recommendations) < r.Requested
}

// HistorySummary 是用户历史的摘要，供解释层构造上下文。
// 只携带解释需要的字段，避免把完整历史透传给外部服务。
type HistorySummary struct {
	UserID       string
	Size         int
	RecentTitles []string // 最近交互的商品标题（最多几条）
	TopCategory  string   // 主类目（出现频次最高）
}
