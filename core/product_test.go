package core

import "testing"

func TestUserHistory(t *testing.T) {
	u := &User{ID: "U1", History: []string{"P1", "P2", "P1"}}
	if got := u.InteractionCount(); got != 3 {
		t.Errorf("InteractionCount = %d, want 3", got)
	}
	set := u.HistorySet()
	if len(set) != 2 {
		t.Errorf("HistorySet 去重后 = %d, want 2", len(set))
	}

	var nilUser *User
	if nilUser.InteractionCount() != 0 {
		t.Error("nil 用户交互数应为 0")
	}
	if len(nilUser.HistorySet()) != 0 {
		t.Error("nil 用户集合应为空")
	}
}

func TestResponseUnderfilled(t *testing.T) {
	r := &Response{Requested: 5, Recommendations: make([]Recommendation, 3)}
	if !r.Underfilled() {
		t.Error("3 < 5 应为欠额")
	}
	r.Recommendations = make([]Recommendation, 5)
	if r.Underfilled() {
		t.Error("5 = 5 不应为欠额")
	}
}
