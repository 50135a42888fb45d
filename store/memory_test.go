package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/hybrec/core"
)

func TestMemoryStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if _, err := s.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Errorf("缺失 key 应为 NOT_FOUND, got %v", err)
	}

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("删除后应为 NOT_FOUND, got %v", err)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if err := s.Set(ctx, "k", []byte("v"), 60); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("未过期的 key 应可读: %v", err)
	}

	// 直接把过期时间拨到过去，避免测试 sleep
	s.mu.Lock()
	past := time.Now().Add(-time.Second)
	s.data["k"].ttl = &past
	s.mu.Unlock()

	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("已过期的 key 应为 NOT_FOUND, got %v", err)
	}
}

func TestMemoryStoreBatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if err := s.BatchSet(ctx, map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}); err != nil {
		t.Fatal(err)
	}

	got, err := s.BatchGet(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Errorf("BatchGet = %v", got)
	}
	if _, ok := got["missing"]; ok {
		t.Error("缺失 key 不应出现在结果中")
	}
}

func TestMemoryStoreZSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	// 同分成员按 member 升序，保证确定性
	for _, e := range []struct {
		member string
		score  float64
	}{
		{"P3", 0.5},
		{"P1", 0.9},
		{"P2", 0.9},
		{"P4", 0.1},
	} {
		if err := s.ZAdd(ctx, "rank", e.score, e.member); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ZRange(ctx, "rank", 0, -1)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"P1", "P2", "P3", "P4"}
	if len(got) != len(want) {
		t.Fatalf("ZRange = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("第 %d 位 = %s, want %s", i, got[i], want[i])
		}
	}

	// 区间截取
	got, err = s.ZRange(ctx, "rank", 0, 1)
	if err != nil || len(got) != 2 || got[0] != "P1" || got[1] != "P2" {
		t.Errorf("ZRange(0,1) = %v, %v", got, err)
	}

	score, err := s.ZScore(ctx, "rank", "P3")
	if err != nil || score != 0.5 {
		t.Errorf("ZScore(P3) = %v, %v", score, err)
	}
	if _, err := s.ZScore(ctx, "rank", "ghost"); !core.IsStoreNotFound(err) {
		t.Errorf("缺失成员应为 NOT_FOUND, got %v", err)
	}
	if got, err := s.ZRange(ctx, "empty", 0, -1); err != nil || got != nil {
		t.Errorf("空 zset 应返回 nil, got %v, %v", got, err)
	}
}
