package pipeline

import (
	"context"

	"github.com/rushteam/eventrec/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindProfile Kind = "profile" // 画像阶段：构建用户 embedding
	KindRecall  Kind = "recall"  // 召回阶段：生成候选集
	KindFilter  Kind = "filter"  // 过滤阶段：剔除不符合约束的候选
	KindReRank  Kind = "rerank"  // 重排阶段：业务规则打分 + 多样性调优
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态，方便召回生成、过滤截断、重排打分等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
