package profile

import (
	"context"
	"fmt"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/pipeline"
)

// Node 是画像 Node：在召回之前把用户 embedding 与排除集写入 RecommendContext。
// 召回节点会优先复用 rctx 中已有的画像，因此本节点是可选的：
// 把画像构建显式化为独立阶段，便于观测与在 fan-out 多路召回前只算一次。
type Node struct {
	Builder *Builder
}

func (n *Node) Name() string        { return "profile.user_embedding" }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindProfile }

func (n *Node) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx.UserEmbedding == nil {
		vec, err := n.Builder.BuildUserEmbedding(ctx, rctx.UserID)
		if err != nil {
			return nil, fmt.Errorf("build user embedding: %w", err)
		}
		rctx.UserEmbedding = vec
	}

	if rctx.Exclude == nil {
		interactions, err := n.Builder.Datastore.FetchUserInteractions(ctx, rctx.UserID)
		if err != nil {
			return nil, fmt.Errorf("fetch interactions: %w", err)
		}
		exclude := make(map[string]struct{}, len(interactions))
		for _, in := range interactions {
			exclude[in.EventID] = struct{}{}
		}
		rctx.Exclude = exclude
	}

	return items, nil
}

var _ pipeline.Node = (*Node)(nil)
