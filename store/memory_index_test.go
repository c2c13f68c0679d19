package store

import (
	"math"
	"testing"
	"time"

	"github.com/rushteam/eventrec/core"
)

func TestMemoryVectorIndex_AddDimensionMismatch(t *testing.T) {
	index := NewMemoryVectorIndex(3)

	err := index.Add("ev-1", []float64{1, 0}, core.VectorMeta{})
	if !core.IsDimensionMismatch(err) {
		t.Fatalf("期望 DIMENSION_MISMATCH，实际得到 %v", err)
	}
	if index.Len() != 0 {
		t.Errorf("失败的 Add 不应该写入索引，Len = %d", index.Len())
	}

	if err := index.Add("ev-1", []float64{1, 0, 0}, core.VectorMeta{}); err != nil {
		t.Fatalf("合法维度 Add 失败: %v", err)
	}
	if index.Len() != 1 {
		t.Errorf("期望 Len = 1，实际得到 %d", index.Len())
	}
}

func TestMemoryVectorIndex_AddOverwrite(t *testing.T) {
	index := NewMemoryVectorIndex(2)

	_ = index.Add("ev-1", []float64{1, 0}, core.VectorMeta{Category: core.CategoryArtsMusic})
	_ = index.Add("ev-1", []float64{0, 1}, core.VectorMeta{Category: core.CategoryTechInnovation})

	if index.Len() != 1 {
		t.Fatalf("同 ID 覆盖写后期望 Len = 1，实际得到 %d", index.Len())
	}
	entry, ok := index.Get("ev-1")
	if !ok {
		t.Fatal("Get 未找到覆盖写后的条目")
	}
	if entry.Vector[1] != 1 || entry.Meta.Category != core.CategoryTechInnovation {
		t.Errorf("覆盖写未生效: %+v", entry)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"zero norm", []float64{0, 0}, []float64{1, 1}, 0},
		{"scale invariant", []float64{1, 1}, []float64{10, 10}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity(%v, %v) = %v，期望 %v", tt.a, tt.b, got, tt.want)
			}
			// 对称性
			if rev := cosineSimilarity(tt.b, tt.a); math.Abs(got-rev) > 1e-9 {
				t.Errorf("余弦相似度不对称: %v vs %v", got, rev)
			}
		})
	}
}

func TestMemoryVectorIndex_SearchOrdering(t *testing.T) {
	index := NewMemoryVectorIndex(2)
	// ev-b 与 ev-a 相似度相同（同向量），验证同分按 ID 升序
	_ = index.Add("ev-b", []float64{1, 0}, core.VectorMeta{})
	_ = index.Add("ev-a", []float64{1, 0}, core.VectorMeta{})
	_ = index.Add("ev-far", []float64{0, 1}, core.VectorMeta{})

	matches, err := index.Search([]float64{1, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Search 失败: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("期望 3 个结果，实际得到 %d", len(matches))
	}
	wantOrder := []string{"ev-a", "ev-b", "ev-far"}
	for i, want := range wantOrder {
		if matches[i].ID != want {
			t.Errorf("位置 %d 期望 %s，实际得到 %s", i, want, matches[i].ID)
		}
	}
	if matches[0].Score < matches[1].Score || matches[1].Score < matches[2].Score {
		t.Error("结果未按相似度降序排列")
	}
}

func TestMemoryVectorIndex_SearchExclude(t *testing.T) {
	index := NewMemoryVectorIndex(2)
	_ = index.Add("ev-1", []float64{1, 0}, core.VectorMeta{})
	_ = index.Add("ev-2", []float64{0.9, 0.1}, core.VectorMeta{})

	matches, err := index.Search([]float64{1, 0}, 10, map[string]struct{}{"ev-1": {}})
	if err != nil {
		t.Fatalf("Search 失败: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "ev-2" {
		t.Errorf("排除集未生效: %+v", matches)
	}

	// 全部被排除时返回空切片而非错误
	matches, err = index.Search([]float64{1, 0}, 10, map[string]struct{}{"ev-1": {}, "ev-2": {}})
	if err != nil {
		t.Fatalf("Search 失败: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("期望空结果，实际得到 %d 个", len(matches))
	}
}

func TestMemoryVectorIndex_SearchEmptyIndex(t *testing.T) {
	index := NewMemoryVectorIndex(2)

	matches, err := index.Search([]float64{1, 0}, 5, nil)
	if err != nil {
		t.Fatalf("空索引查询不应该报错: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("空索引期望空结果，实际得到 %d 个", len(matches))
	}
}

func TestMemoryVectorIndex_SearchQueryDimensionMismatch(t *testing.T) {
	index := NewMemoryVectorIndex(3)
	_, err := index.Search([]float64{1, 0}, 5, nil)
	if !core.IsDimensionMismatch(err) {
		t.Fatalf("期望 DIMENSION_MISMATCH，实际得到 %v", err)
	}
}

func TestMemoryVectorIndex_SearchTopKDefault(t *testing.T) {
	index := NewMemoryVectorIndex(1)
	for i := 0; i < 15; i++ {
		_ = index.Add(string(rune('a'+i)), []float64{1}, core.VectorMeta{})
	}

	// topK <= 0 时取默认值 10
	matches, err := index.Search([]float64{1}, 0, nil)
	if err != nil {
		t.Fatalf("Search 失败: %v", err)
	}
	if len(matches) != 10 {
		t.Errorf("topK=0 期望返回默认 10 个，实际得到 %d", len(matches))
	}

	matches, _ = index.Search([]float64{1}, 3, nil)
	if len(matches) != 3 {
		t.Errorf("topK=3 期望返回 3 个，实际得到 %d", len(matches))
	}
}

func TestMemoryVectorIndex_SearchWithFilter(t *testing.T) {
	now := time.Now()
	index := NewMemoryVectorIndex(2)
	_ = index.Add("ev-tech", []float64{1, 0}, core.VectorMeta{Category: core.CategoryTechInnovation, CreatedAt: now})
	_ = index.Add("ev-art", []float64{1, 0}, core.VectorMeta{Category: core.CategoryArtsMusic, CreatedAt: now})

	matches, err := index.SearchWithFilter([]float64{1, 0}, 10, func(meta core.VectorMeta) bool {
		return meta.Category == core.CategoryTechInnovation
	})
	if err != nil {
		t.Fatalf("SearchWithFilter 失败: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "ev-tech" {
		t.Errorf("谓词过滤未生效: %+v", matches)
	}
}

func TestMemoryVectorIndex_Remove(t *testing.T) {
	index := NewMemoryVectorIndex(1)
	_ = index.Add("ev-1", []float64{1}, core.VectorMeta{})

	if !index.Remove("ev-1") {
		t.Error("删除存在的 ID 应返回 true")
	}
	if index.Remove("ev-1") {
		t.Error("重复删除应返回 false（no-op）")
	}
	if _, ok := index.Get("ev-1"); ok {
		t.Error("删除后 Get 不应命中")
	}
}

func TestMemoryVectorIndex_ClearAndAddBatch(t *testing.T) {
	index := NewMemoryVectorIndex(2)
	_ = index.Add("stale", []float64{1, 0}, core.VectorMeta{})

	index.Clear()
	if index.Len() != 0 {
		t.Fatalf("Clear 后期望 Len = 0，实际得到 %d", index.Len())
	}

	err := index.AddBatch([]core.VectorEntry{
		{ID: "ev-1", Vector: []float64{1, 0}},
		{ID: "ev-2", Vector: []float64{0, 1}},
	})
	if err != nil {
		t.Fatalf("AddBatch 失败: %v", err)
	}
	if index.Len() != 2 {
		t.Errorf("期望 Len = 2，实际得到 %d", index.Len())
	}

	// 任一条目维度不符即报错
	err = index.AddBatch([]core.VectorEntry{
		{ID: "ev-3", Vector: []float64{1, 0, 0}},
	})
	if !core.IsDimensionMismatch(err) {
		t.Fatalf("期望 DIMENSION_MISMATCH，实际得到 %v", err)
	}
}
