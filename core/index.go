package core

import "time"

// VectorIndex 是向量索引的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 接口边界按"可替换为 ANN 实现"的形状设计：调用方只依赖此接口，
//     未来替换 Milvus/Faiss 等近似索引不需要改动召回层
//   - 进程内唯一实例由编排层显式持有并注入，不使用全局单例；
//     重载与服务的互斥由调用方保证（启动时加载，或构建新实例后原子换引用）
//
// 并发约定：
//   - 稳定期（无重载）的并发读是安全的
//   - Clear + AddBatch 是约定的整体重载路径，不提供部分写隔离，
//     重载期间调用方不得查询
type VectorIndex interface {
	// Add 插入或覆盖一个向量。向量长度 != 索引维度时返回 DIMENSION_MISMATCH。
	Add(id string, vector []float64, meta VectorMeta) error

	// Remove 删除一个向量，返回该 ID 此前是否存在；不存在时为 no-op。
	Remove(id string) bool

	// Get 读取单个向量条目（画像加权平均需要按 ID 取回交互过的事件向量）。
	Get(id string) (VectorEntry, bool)

	// Search 以余弦相似度对全量非排除项打分，返回至多 topK 个结果，
	// 按相似度降序、同分按 ID 升序。查询向量维度不符返回 DIMENSION_MISMATCH。
	// 索引为空或全部被排除时返回空切片（不是错误）。
	Search(query []float64, topK int, exclude map[string]struct{}) ([]VectorMatch, error)

	// SearchWithFilter 与 Search 相同，但条目还须满足元信息谓词才会被打分。
	SearchWithFilter(query []float64, topK int, predicate func(VectorMeta) bool) ([]VectorMatch, error)

	// Clear 清空索引（整体重载的第一步）。
	Clear()

	// AddBatch 批量插入（整体重载的第二步），任一条目维度不符即返回错误。
	AddBatch(entries []VectorEntry) error

	// Len 返回索引中的向量数量。
	Len() int

	// Dimension 返回索引的固定维度 D。
	Dimension() int
}

// VectorMeta 是向量的结构化元信息。
// 不使用开放的 map：未来新增元信息需要定义字段，而不是 ad hoc key。
type VectorMeta struct {
	Category  Category
	CreatedAt time.Time
}

// VectorEntry 是批量加载的单个条目。
type VectorEntry struct {
	ID     string
	Vector []float64
	Meta   VectorMeta
}

// VectorMatch 是单个向量搜索结果项。
type VectorMatch struct {
	ID    string
	Score float64 // 余弦相似度，范围 [-1, 1]
	Meta  VectorMeta
}

// Candidate 把搜索结果映射为召回候选。
func (m VectorMatch) Candidate() Candidate {
	return Candidate{
		EventID:    m.ID,
		Similarity: m.Score,
		Category:   m.Meta.Category,
		CreatedAt:  m.Meta.CreatedAt,
	}
}
