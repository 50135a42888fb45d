package core

// Product 是商品元数据的只读快照，在单次请求生命周期内不可变。
// Price / Rating 在源目录中可能缺失或非法，用指针表达"可缺省"。
type Product struct {
	ID       string   `json:"product_id"`
	Title    string   `json:"title"`
	Category string   `json:"category"` // 单一类目字符串，不含 '|'
	Price    *float64 `json:"price,omitempty"`
	Rating   *float64 `json:"rating,omitempty"` // 0.0 - 5.0
}

// User 是用户的只读快照，每次请求从目录取一次，引擎不回写。
// History 是交互过的商品 ID 序列，插入顺序即时间顺序。
type User struct {
	ID      string   `json:"user_id"`
	History []string `json:"history"`
}

// InteractionCount 返回交互数（派生值）。
func (u *User) InteractionCount() int {
	if u == nil {
		return 0
	}
	return len(u.History)
}

// HistorySet 返回交互商品 ID 的集合形态，用于去重/排除。
func (u *User) HistorySet() map[string]struct{} {
	set := make(map[string]struct{}, u.InteractionCount())
	if u == nil {
		return set
	}
	for _, id := range u.History {
		set[id] = struct{}{}
	}
	return set
}
