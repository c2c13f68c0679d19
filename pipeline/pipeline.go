package pipeline

import (
	"context"

	"github.com/rushteam/eventrec/core"
)

// Pipeline 是引擎的核心抽象：把单用户推荐逻辑拆成可组合的 Node 链。
// 单用户链路内是严格串行依赖：画像 → 召回 → 过滤 → 重排。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		// 调用方取消时在节点间尽早退出，避免空跑剩余阶段
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
