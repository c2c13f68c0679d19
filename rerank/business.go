package rerank

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/pipeline"
	"github.com/rushteam/eventrec/pkg/utils"
)

// Config 是业务规则重排的权重配置。
type Config struct {
	// TopK 最终保留的结果数量
	TopK int `yaml:"top_k"`

	// MaxDaysOld 硬截断：事件距今超过该天数直接丢弃（不是降权）
	MaxDaysOld int `yaml:"max_days_old"`

	// RecencyWeight 新鲜度权重
	RecencyWeight float64 `yaml:"recency_weight"`

	// SimilarityWeight 相似度权重
	SimilarityWeight float64 `yaml:"similarity_weight"`

	// DiversityPenalty 同类目重复惩罚系数
	DiversityPenalty float64 `yaml:"diversity_penalty"`
}

// DefaultConfig 返回默认权重。
func DefaultConfig() Config {
	return Config{
		TopK:             10,
		MaxDaysOld:       60,
		RecencyWeight:    0.3,
		SimilarityWeight: 0.7,
		DiversityPenalty: 0.1,
	}
}

// 推荐理由的相似度/新鲜度阈值
const (
	reasonSimilarityHigh   = 0.8
	reasonSimilarityMedium = 0.6
	reasonRecencyHigh      = 0.8
)

// Business 是业务规则重排节点：在相似度召回结果上叠加新鲜度衰减、
// 类目多样性惩罚与加权求和，并生成人类可读的推荐理由。
//
// 算法（按输入顺序处理，输入应为相似度降序）：
//  1. daysOld > MaxDaysOld 的候选整条丢弃（硬截断）
//  2. recency = max(0, 1 - daysOld/MaxDaysOld)
//  3. 类目惩罚按处理顺序累积：penalty = 已出现次数 * DiversityPenalty，
//     首次出现免罚；打分后计数 +1
//  4. final = sim*SimilarityWeight + recency*RecencyWeight - penalty
//  5. 按 final 降序排序，截断 TopK，生成理由
//
// 说明：惩罚依赖处理顺序（而处理顺序本身是相似度序），因此每个类目
// 相似度最高的那条永远免罚。多样性靠压制"后续同类目"实现，
// 是低成本近似，不是全局最优的多样性重排。
type Business struct {
	Config Config
}

// NewBusiness 创建业务规则重排节点。
func NewBusiness(cfg Config) *Business {
	if cfg.TopK <= 0 {
		cfg.TopK = 10
	}
	if cfg.MaxDaysOld <= 0 {
		cfg.MaxDaysOld = 60
	}
	return &Business{Config: cfg}
}

func (n *Business) Name() string        { return "rerank.business" }
func (n *Business) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *Business) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	now := rctx.At()
	cfg := n.Config
	categoryCounts := make(map[core.Category]int)

	survivors := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}

		daysOld := int(absDuration(now.Sub(it.CreatedAt)).Hours() / 24)
		if daysOld > cfg.MaxDaysOld {
			continue
		}

		recency := 1 - float64(daysOld)/float64(cfg.MaxDaysOld)
		if recency < 0 {
			recency = 0
		}

		category := it.Category
		if category == core.CategoryUnknown {
			category = "unknown"
		}
		penalty := float64(categoryCounts[category]) * cfg.DiversityPenalty
		categoryCounts[category]++

		similarity := it.Similarity
		final := similarity*cfg.SimilarityWeight + recency*cfg.RecencyWeight - penalty

		it.Recency = recency
		it.Score = final
		it.Reason = n.reason(similarity, recency, it.Category)
		it.PutLabel("reason", utils.Label{Value: it.Reason, Source: "rerank"})
		survivors = append(survivors, it)
	}

	// final 降序；稳定排序保证同分时保持处理顺序
	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].Score > survivors[j].Score
	})

	if len(survivors) > cfg.TopK {
		survivors = survivors[:cfg.TopK]
	}
	return survivors, nil
}

// reason 组合推荐理由：相似度档位 + 类目片段 + 临近提示，
// 非空片段以 " • " 连接；全部为空时使用通用兜底。
func (n *Business) reason(similarity, recency float64, category core.Category) string {
	var reasons []string

	if similarity > reasonSimilarityHigh {
		reasons = append(reasons, "Matches your interests closely")
	} else if similarity > reasonSimilarityMedium {
		reasons = append(reasons, "Related to topics you enjoy")
	}

	if category != core.CategoryUnknown {
		reasons = append(reasons, "Includes "+strings.ReplaceAll(string(category), "_", " ")+" content")
	}

	if recency > reasonRecencyHigh {
		reasons = append(reasons, "Happening soon")
	}

	if len(reasons) == 0 {
		return "Recommended for you"
	}
	return strings.Join(reasons, " • ")
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

var _ pipeline.Node = (*Business)(nil)
