package recall

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/profile"
	"github.com/rushteam/eventrec/store"
)

type stubProvider struct {
	vec []float64
}

func (p *stubProvider) GenerateEmbedding(_ context.Context, _ string) ([]float64, error) {
	return p.vec, nil
}

func (p *stubProvider) ClassifyCategory(_ context.Context, _ string) (core.Category, error) {
	return core.CategoryUnknown, nil
}

func newTestRecall(dim int) (*TwoTowerRecall, *store.MemoryDatastore, *store.MemoryVectorIndex) {
	ds := store.NewMemoryDatastore()
	index := store.NewMemoryVectorIndex(dim)
	vec := make([]float64, dim)
	vec[0] = 1
	builder := profile.NewBuilder(ds, index, &stubProvider{vec: vec})
	return &TwoTowerRecall{Builder: builder, Index: index, Datastore: ds}, ds, index
}

func TestTwoTowerRecall_ExcludesInteracted(t *testing.T) {
	r, ds, index := newTestRecall(2)
	now := time.Now()

	_ = index.Add("ev-seen", []float64{1, 0}, core.VectorMeta{})
	_ = index.Add("ev-new", []float64{0.9, 0.1}, core.VectorMeta{})
	ds.AddInteraction(core.Interaction{UserID: "u", EventID: "ev-seen", Action: core.ActionLike, Timestamp: now})

	rctx := &core.RecommendContext{UserID: "u"}
	items, err := r.Recall(context.Background(), rctx)
	if err != nil {
		t.Fatalf("Recall 失败: %v", err)
	}
	if len(items) != 1 || items[0].ID != "ev-new" {
		t.Errorf("交互过的事件应被排除: %+v", items)
	}

	// 排除集写回 rctx 供后续节点使用
	if _, ok := rctx.Exclude["ev-seen"]; !ok {
		t.Error("排除集未写回 RecommendContext")
	}
	if rctx.UserEmbedding == nil {
		t.Error("用户 embedding 未写回 RecommendContext")
	}
}

func TestTwoTowerRecall_ReusesContextEmbedding(t *testing.T) {
	r, _, index := newTestRecall(2)
	_ = index.Add("ev-x", []float64{0, 1}, core.VectorMeta{})

	// 上游已写入画像：不应再调用 Builder（Datastore 为空也能工作）
	rctx := &core.RecommendContext{
		UserID:        "u",
		UserEmbedding: []float64{0, 1},
		Exclude:       map[string]struct{}{},
	}
	items, err := r.Recall(context.Background(), rctx)
	if err != nil {
		t.Fatalf("Recall 失败: %v", err)
	}
	if len(items) != 1 || items[0].ID != "ev-x" {
		t.Errorf("期望复用注入的 embedding: %+v", items)
	}
	if items[0].Similarity != 1 {
		t.Errorf("期望相似度 1，实际得到 %v", items[0].Similarity)
	}
}

func TestRetrieveCandidates_Overfetch(t *testing.T) {
	index := store.NewMemoryVectorIndex(1)
	for i := 0; i < 40; i++ {
		id := "ev-" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		_ = index.Add(id, []float64{1}, core.VectorMeta{})
	}

	// topK=10, multiplier=3 → 最多召回 30 个候选
	candidates, err := RetrieveCandidates(index, []float64{1}, nil, 10, 3, nil)
	if err != nil {
		t.Fatalf("RetrieveCandidates 失败: %v", err)
	}
	if len(candidates) != 30 {
		t.Errorf("期望 30 个候选，实际得到 %d", len(candidates))
	}

	// multiplier <= 0 时取默认值 3
	candidates, err = RetrieveCandidates(index, []float64{1}, nil, 5, 0, nil)
	if err != nil {
		t.Fatalf("RetrieveCandidates 失败: %v", err)
	}
	if len(candidates) != 15 {
		t.Errorf("期望 15 个候选，实际得到 %d", len(candidates))
	}
}

func TestRetrieveCandidates_EmptyIndex(t *testing.T) {
	index := store.NewMemoryVectorIndex(2)
	candidates, err := RetrieveCandidates(index, []float64{1, 0}, nil, 10, 3, nil)
	if err != nil {
		t.Fatalf("空索引不应报错: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("空索引期望空候选，实际得到 %d", len(candidates))
	}
}

func TestRetrieveCandidates_FilterWithExclude(t *testing.T) {
	now := time.Now()
	index := store.NewMemoryVectorIndex(2)
	_ = index.Add("ev-tech", []float64{1, 0}, core.VectorMeta{Category: core.CategoryTechInnovation, CreatedAt: now})
	_ = index.Add("ev-tech2", []float64{0.9, 0.1}, core.VectorMeta{Category: core.CategoryTechInnovation, CreatedAt: now})
	_ = index.Add("ev-art", []float64{1, 0}, core.VectorMeta{Category: core.CategoryArtsMusic, CreatedAt: now})

	onlyTech := func(meta core.VectorMeta) bool { return meta.Category == core.CategoryTechInnovation }
	exclude := map[string]struct{}{"ev-tech": {}}

	candidates, err := RetrieveCandidates(index, []float64{1, 0}, exclude, 10, 3, onlyTech)
	if err != nil {
		t.Fatalf("RetrieveCandidates 失败: %v", err)
	}
	if len(candidates) != 1 || candidates[0].EventID != "ev-tech2" {
		t.Errorf("谓词 + 排除集叠加结果错误: %+v", candidates)
	}
}

func TestTrending_FallbackIDs(t *testing.T) {
	r := &Trending{IDs: []string{"ev-1", "ev-2"}}

	items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u"})
	if err != nil {
		t.Fatalf("Recall 失败: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("期望 2 个结果，实际得到 %d", len(items))
	}
	lbl, ok := items[0].Labels["recall_source"]
	if !ok || lbl.Value != "recall.trending" {
		t.Errorf("recall_source label 缺失或错误: %+v", items[0].Labels)
	}
}

func TestTrending_ZSetSource(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()
	_ = kv.ZAdd(ctx, "trending:events", 300, "ev-hot")
	_ = kv.ZAdd(ctx, "trending:events", 100, "ev-cool")
	_ = kv.ZAdd(ctx, "trending:events", 200, "ev-warm")

	r := &Trending{Store: kv, Key: "trending:events", Limit: 2}
	items, err := r.Recall(ctx, &core.RecommendContext{UserID: "u"})
	if err != nil {
		t.Fatalf("Recall 失败: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("期望榜单截断到 2 个，实际得到 %d", len(items))
	}
	if items[0].ID != "ev-hot" || items[1].ID != "ev-warm" {
		t.Errorf("榜单应按互动量降序: [%s, %s]", items[0].ID, items[1].ID)
	}
}

func TestFanout_MergePriority(t *testing.T) {
	index := store.NewMemoryVectorIndex(1)
	_ = index.Add("ev-shared", []float64{1}, core.VectorMeta{})

	personalized := &Trending{IDs: []string{"ev-shared", "ev-p"}}
	fallback := &Trending{IDs: []string{"ev-shared", "ev-f"}}

	fanout := &Fanout{
		Sources:       []Source{personalized, fallback},
		Dedup:         true,
		MergeStrategy: "priority",
	}
	items, err := fanout.Process(context.Background(), &core.RecommendContext{UserID: "u"}, nil)
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("期望去重后 3 个，实际得到 %d", len(items))
	}
	seen := map[string]bool{}
	for _, it := range items {
		if seen[it.ID] {
			t.Errorf("重复 ID: %s", it.ID)
		}
		seen[it.ID] = true
	}
}
