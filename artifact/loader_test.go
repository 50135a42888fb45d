package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/hybrec/core"
)

func writeArtifacts(t *testing.T, modelJSON, fallbackJSON string) (modelPath, fallbackPath string) {
	t.Helper()
	dir := t.TempDir()
	modelPath = filepath.Join(dir, "model.json")
	fallbackPath = filepath.Join(dir, "fallback.json")
	if err := os.WriteFile(modelPath, []byte(modelJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fallbackPath, []byte(fallbackJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return modelPath, fallbackPath
}

func TestLoadFiles(t *testing.T) {
	modelPath, fallbackPath := writeArtifacts(t,
		`{
			"version": "v1",
			"user_factors": {"U1": [0.5, 0.5]},
			"item_factors": {"P1": [1.0, 0.0], "P2": [0.0, 1.0]}
		}`,
		`{
			"top_popular": [{"id": "P1", "score": 0.9}, {"id": "P2", "score": 0.4}],
			"categories": {"Electronics": [{"id": "P1", "score": 0.9}]}
		}`)

	snap, err := LoadFiles(modelPath, fallbackPath)
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	if snap.Version != "v1" {
		t.Errorf("版本不符: got %q", snap.Version)
	}
	if snap.Model.Rank != 2 {
		t.Errorf("Rank 应从向量推断为 2, got %d", snap.Model.Rank)
	}
	if !snap.Model.HasUser("U1") {
		t.Error("U1 应有隐向量")
	}
	if score, ok := snap.Fallback.PopularityScore("P1"); !ok || score != 0.9 {
		t.Errorf("PopularityScore(P1) = %v, %v", score, ok)
	}
	if got := snap.Fallback.CategoryRanking("Electronics"); len(got) != 1 {
		t.Errorf("类目排行长度 = %d, want 1", len(got))
	}
	if got := snap.Fallback.CategoryRanking("Books"); got != nil {
		t.Errorf("未知类目应返回 nil, got %v", got)
	}
}

func TestLoadFilesErrors(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		fallback string
	}{
		{
			name:     "模型 JSON 非法",
			model:    `{not json`,
			fallback: `{"top_popular": [{"id": "P1", "score": 0.9}]}`,
		},
		{
			name:     "向量长度不一致",
			model:    `{"user_factors": {"U1": [0.5]}, "item_factors": {"P1": [1.0, 0.0]}}`,
			fallback: `{"top_popular": [{"id": "P1", "score": 0.9}]}`,
		},
		{
			name:     "空工件",
			model:    `{"user_factors": {}, "item_factors": {}}`,
			fallback: `{"top_popular": []}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			modelPath, fallbackPath := writeArtifacts(t, tt.model, tt.fallback)
			_, err := LoadFiles(modelPath, fallbackPath)
			if err == nil {
				t.Fatal("应返回错误")
			}
			if !core.IsArtifactUnavailable(err) {
				t.Errorf("应为 artifact/UNAVAILABLE, got %v", err)
			}
		})
	}
}

func TestLoadFilesMissingFile(t *testing.T) {
	_, err := LoadFiles("/nonexistent/model.json", "/nonexistent/fallback.json")
	if !core.IsArtifactUnavailable(err) {
		t.Errorf("文件缺失应为 artifact/UNAVAILABLE, got %v", err)
	}
}

// fakeKVStore 是测试用的 KeyValueStore 最小实现。
type fakeKVStore struct {
	data  map[string][]byte
	zsets map[string][]core.ScoredID // 已按分数降序
}

func (s *fakeKVStore) Name() string { return "fake" }

func (s *fakeKVStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.data[key]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	return v, nil
}

func (s *fakeKVStore) Set(_ context.Context, key string, value []byte, _ ...int) error {
	s.data[key] = value
	return nil
}

func (s *fakeKVStore) Delete(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func (s *fakeKVStore) BatchGet(_ context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for _, k := range keys {
		if v, ok := s.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *fakeKVStore) BatchSet(_ context.Context, kvs map[string][]byte, _ ...int) error {
	for k, v := range kvs {
		s.data[k] = v
	}
	return nil
}

func (s *fakeKVStore) Close() error { return nil }

func (s *fakeKVStore) ZAdd(_ context.Context, key string, score float64, member string) error {
	s.zsets[key] = append(s.zsets[key], core.ScoredID{ID: member, Score: score})
	return nil
}

func (s *fakeKVStore) ZRange(_ context.Context, key string, _, _ int64) ([]string, error) {
	seq := s.zsets[key]
	out := make([]string, 0, len(seq))
	for _, e := range seq {
		out = append(out, e.ID)
	}
	return out, nil
}

func (s *fakeKVStore) ZScore(_ context.Context, key string, member string) (float64, error) {
	for _, e := range s.zsets[key] {
		if e.ID == member {
			return e.Score, nil
		}
	}
	return 0, core.ErrStoreNotFound
}

func TestLoadStore(t *testing.T) {
	ctx := context.Background()
	s := &fakeKVStore{
		data: map[string][]byte{
			"artifact:model":    []byte(`{"version": "v2", "item_factors": {"P1": [1.0]}}`),
			"artifact:fallback": []byte(`{"top_popular": [{"id": "P1", "score": 0.9}]}`),
		},
		zsets: map[string][]core.ScoredID{},
	}

	snap, err := LoadStore(ctx, s, "")
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	if snap.Version != "v2" {
		t.Errorf("版本不符: got %q", snap.Version)
	}
	if len(snap.Fallback.Popular) != 1 || snap.Fallback.Popular[0].ID != "P1" {
		t.Errorf("热度排行不符: %v", snap.Fallback.Popular)
	}
}

func TestLoadStoreZSetOverridesJSON(t *testing.T) {
	ctx := context.Background()
	s := &fakeKVStore{
		data: map[string][]byte{
			"artifact:model":    []byte(`{"item_factors": {"P1": [1.0]}}`),
			"artifact:fallback": []byte(`{"top_popular": [{"id": "OLD", "score": 0.9}]}`),
		},
		zsets: map[string][]core.ScoredID{
			"artifact:popular": {
				{ID: "P2", Score: 0.8},
				{ID: "P3", Score: 0.6},
			},
		},
	}

	snap, err := LoadStore(ctx, s, "artifact")
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	if len(snap.Fallback.Popular) != 2 {
		t.Fatalf("zset 应覆盖 JSON 排行, got %v", snap.Fallback.Popular)
	}
	if snap.Fallback.Popular[0].ID != "P2" {
		t.Errorf("排行首位应为 P2, got %s", snap.Fallback.Popular[0].ID)
	}
	if _, ok := snap.Fallback.PopularityScore("OLD"); ok {
		t.Error("zset 覆盖后 JSON 中的旧排行不应保留")
	}
}

func TestLoadStoreMissingKey(t *testing.T) {
	s := &fakeKVStore{data: map[string][]byte{}, zsets: map[string][]core.ScoredID{}}
	_, err := LoadStore(context.Background(), s, "artifact")
	if !core.IsArtifactUnavailable(err) {
		t.Errorf("工件 key 缺失应为 artifact/UNAVAILABLE, got %v", err)
	}
}
