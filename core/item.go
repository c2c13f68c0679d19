package core

import (
	"time"

	"github.com/rushteam/eventrec/pkg/utils"
)

// Item 是推荐链路中的统一承载结构：分数、元信息、标签。
// Labels 用于解释与策略驱动；Score 是当前阶段的排序分
// （召回阶段为相似度，重排阶段为业务加权最终分）。
type Item struct {
	ID        string
	Score     float64
	Category  Category
	CreatedAt time.Time

	// Similarity / Recency 由重排节点回填，便于生成理由与结果映射
	Similarity float64
	Recency    float64
	Reason     string

	Labels map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Labels: make(map[string]utils.Label),
	}
}

// ItemFromCandidate 把召回候选转换为链路 Item，Score 初始为相似度。
func ItemFromCandidate(c Candidate) *Item {
	it := NewItem(c.EventID)
	it.Score = c.Similarity
	it.Similarity = c.Similarity
	it.Category = c.Category
	it.CreatedAt = c.CreatedAt
	return it
}

// Recommendation 把重排后的 Item 映射为最终结果（rank 从 1 开始）。
func (it *Item) Recommendation(rank int) Recommendation {
	return Recommendation{
		EventID:    it.ID,
		Similarity: it.Similarity,
		Recency:    it.Recency,
		FinalScore: it.Score,
		Reason:     it.Reason,
		Rank:       rank,
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
