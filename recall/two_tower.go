package recall

import (
	"context"
	"fmt"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/pipeline"
	"github.com/rushteam/eventrec/pkg/utils"
	"github.com/rushteam/eventrec/profile"
)

// DefaultCandidateMultiplier 是候选超采倍数的默认值：
// 召回 topK * multiplier 个候选供重排阶段筛选。
const DefaultCandidateMultiplier = 3

// TwoTowerRecall 是基于双塔模式的召回源：用户 embedding 与事件 embedding
// 在同一向量空间中，以余弦相似度近似相关性。
//
// 核心流程：
//  1. 构建用户 embedding（profile.Builder；冷启动回退偏好文本）
//  2. 收集排除集（用户交互过的全部事件）
//  3. 向量索引超采检索（topK * multiplier）
//
// 设计原则：
//   - 索引为空或候选为空返回空结果，不是错误
//   - 通过 core.VectorIndex 接口依赖，可替换为 ANN 实现
type TwoTowerRecall struct {
	// Builder 构建用户 embedding
	Builder *profile.Builder

	// Index 向量索引
	Index core.VectorIndex

	// Datastore 提供交互历史（用于排除集）
	Datastore core.Datastore

	// TopK 最终结果数量
	TopK int

	// Multiplier 候选超采倍数，<=0 时取 DefaultCandidateMultiplier
	Multiplier int

	// Filter 可选的候选元信息过滤谓词（可由 pkg/dsl 的 CEL 表达式编译而来）
	Filter func(core.VectorMeta) bool
}

func (r *TwoTowerRecall) Name() string        { return "recall.two_tower" }
func (r *TwoTowerRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *TwoTowerRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口，执行双塔召回流程。
func (r *TwoTowerRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	// 1. 用户 embedding：优先复用上游节点写入的结果
	userEmbedding := rctx.UserEmbedding
	if userEmbedding == nil {
		var err error
		userEmbedding, err = r.Builder.BuildUserEmbedding(ctx, rctx.UserID)
		if err != nil {
			return nil, fmt.Errorf("build user embedding: %w", err)
		}
		rctx.UserEmbedding = userEmbedding
	}

	// 2. 排除集：用户交互过的全部事件
	exclude := rctx.Exclude
	if exclude == nil {
		var err error
		exclude, err = r.excludedEventIDs(ctx, rctx.UserID)
		if err != nil {
			return nil, fmt.Errorf("collect exclude set: %w", err)
		}
		rctx.Exclude = exclude
	}

	// 3. 超采检索
	candidates, err := RetrieveCandidates(r.Index, userEmbedding, exclude, r.topK(), r.multiplier(), r.Filter)
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}

	out := make([]*core.Item, 0, len(candidates))
	for _, c := range candidates {
		it := core.ItemFromCandidate(c)
		it.PutLabel("recall_source", utils.Label{Value: r.Name(), Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// RetrieveCandidates 查询向量索引并映射为候选。
// numCandidates = topK * multiplier；索引为空返回空切片（非错误）。
func RetrieveCandidates(
	index core.VectorIndex,
	userEmbedding []float64,
	exclude map[string]struct{},
	topK, multiplier int,
	filter func(core.VectorMeta) bool,
) ([]core.Candidate, error) {
	if multiplier <= 0 {
		multiplier = DefaultCandidateMultiplier
	}
	numCandidates := topK * multiplier

	var (
		matches []core.VectorMatch
		err     error
	)
	if filter != nil {
		pred := filter
		if len(exclude) > 0 {
			// SearchWithFilter 不接收排除集，叠加到谓词外层处理
			matches, err = index.Search(userEmbedding, index.Len(), exclude)
			if err != nil {
				return nil, err
			}
			filtered := matches[:0]
			for _, m := range matches {
				if pred(m.Meta) {
					filtered = append(filtered, m)
				}
			}
			if len(filtered) > numCandidates {
				filtered = filtered[:numCandidates]
			}
			matches = filtered
		} else {
			matches, err = index.SearchWithFilter(userEmbedding, numCandidates, pred)
			if err != nil {
				return nil, err
			}
		}
	} else {
		matches, err = index.Search(userEmbedding, numCandidates, exclude)
		if err != nil {
			return nil, err
		}
	}

	candidates := make([]core.Candidate, len(matches))
	for i, m := range matches {
		candidates[i] = m.Candidate()
	}
	return candidates, nil
}

func (r *TwoTowerRecall) excludedEventIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	interactions, err := r.Datastore.FetchUserInteractions(ctx, userID)
	if err != nil {
		return nil, err
	}
	exclude := make(map[string]struct{}, len(interactions))
	for _, in := range interactions {
		exclude[in.EventID] = struct{}{}
	}
	return exclude, nil
}

func (r *TwoTowerRecall) topK() int {
	if r.TopK <= 0 {
		return 10
	}
	return r.TopK
}

func (r *TwoTowerRecall) multiplier() int {
	if r.Multiplier <= 0 {
		return DefaultCandidateMultiplier
	}
	return r.Multiplier
}

// 确保实现了接口
var (
	_ Source        = (*TwoTowerRecall)(nil)
	_ pipeline.Node = (*TwoTowerRecall)(nil)
)
