package store

import (
	"math"
	"sort"
	"sync"

	"github.com/rushteam/eventrec/core"
)

// MemoryVectorIndex 是内存实现的向量索引：暴力余弦检索。
//
// 特点：
//   - 纯内存实现，进程重启后数据丢失，启动时整体重载
//   - O(N·D) 暴力检索，在千级物品规模下足够；接口边界按可替换 ANN 设计
//   - 稳定期（无重载）并发读安全；Clear+AddBatch 重载期间调用方不得查询
//   - 维度 D 在实例生命周期内固定
type MemoryVectorIndex struct {
	mu        sync.RWMutex
	dimension int
	vectors   map[string][]float64
	meta      map[string]core.VectorMeta
}

// NewMemoryVectorIndex 创建固定维度的内存向量索引。
func NewMemoryVectorIndex(dimension int) *MemoryVectorIndex {
	return &MemoryVectorIndex{
		dimension: dimension,
		vectors:   make(map[string][]float64),
		meta:      make(map[string]core.VectorMeta),
	}
}

// Add 实现 core.VectorIndex 接口。同 ID 覆盖写。
func (m *MemoryVectorIndex) Add(id string, vector []float64, meta core.VectorMeta) error {
	if len(vector) != m.dimension {
		return core.NewDomainError(core.ModuleIndex, core.ErrorCodeDimensionMismatch, "vector dimension mismatch")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.vectors[id] = vector
	m.meta[id] = meta
	return nil
}

// Remove 实现 core.VectorIndex 接口。返回该 ID 此前是否存在。
func (m *MemoryVectorIndex) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.vectors[id]
	if ok {
		delete(m.vectors, id)
		delete(m.meta, id)
	}
	return ok
}

// Get 实现 core.VectorIndex 接口。
func (m *MemoryVectorIndex) Get(id string) (core.VectorEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vec, ok := m.vectors[id]
	if !ok {
		return core.VectorEntry{}, false
	}
	return core.VectorEntry{ID: id, Vector: vec, Meta: m.meta[id]}, true
}

// Search 实现 core.VectorIndex 接口。
func (m *MemoryVectorIndex) Search(query []float64, topK int, exclude map[string]struct{}) ([]core.VectorMatch, error) {
	return m.search(query, topK, exclude, nil)
}

// SearchWithFilter 实现 core.VectorIndex 接口。
func (m *MemoryVectorIndex) SearchWithFilter(query []float64, topK int, predicate func(core.VectorMeta) bool) ([]core.VectorMatch, error) {
	return m.search(query, topK, nil, predicate)
}

func (m *MemoryVectorIndex) search(
	query []float64,
	topK int,
	exclude map[string]struct{},
	predicate func(core.VectorMeta) bool,
) ([]core.VectorMatch, error) {
	if len(query) != m.dimension {
		return nil, core.NewDomainError(core.ModuleIndex, core.ErrorCodeDimensionMismatch, "query dimension mismatch")
	}

	if topK <= 0 {
		topK = 10
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]core.VectorMatch, 0, len(m.vectors))
	for id, vec := range m.vectors {
		if _, ok := exclude[id]; ok {
			continue
		}
		md := m.meta[id]
		if predicate != nil && !predicate(md) {
			continue
		}
		matches = append(matches, core.VectorMatch{
			ID:    id,
			Score: cosineSimilarity(query, vec),
			Meta:  md,
		})
	}

	// 按相似度降序；同分按 ID 升序，保证结果确定性
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Clear 实现 core.VectorIndex 接口。
func (m *MemoryVectorIndex) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.vectors = make(map[string][]float64)
	m.meta = make(map[string]core.VectorMeta)
}

// AddBatch 实现 core.VectorIndex 接口。
func (m *MemoryVectorIndex) AddBatch(entries []core.VectorEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		if len(e.Vector) != m.dimension {
			return core.NewDomainError(core.ModuleIndex, core.ErrorCodeDimensionMismatch, "vector dimension mismatch: "+e.ID)
		}
		m.vectors[e.ID] = e.Vector
		m.meta[e.ID] = e.Meta
	}
	return nil
}

// Len 实现 core.VectorIndex 接口。
func (m *MemoryVectorIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}

// Dimension 实现 core.VectorIndex 接口。
func (m *MemoryVectorIndex) Dimension() int { return m.dimension }

// cosineSimilarity 计算余弦相似度。零范数向量返回 0，避免除零。
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// 确保实现了接口
var _ core.VectorIndex = (*MemoryVectorIndex)(nil)
