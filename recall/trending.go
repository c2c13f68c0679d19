package recall

import (
	"context"
	"encoding/json"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/pipeline"
	"github.com/rushteam/eventrec/pkg/utils"
)

// Trending 是热门召回源，支持从 Store 读取热门事件榜单。
// - 如果 Store 实现了 KeyValueStore，优先使用 ZRange（有序集合，按互动量排序）
// - 否则从普通 key 读取 JSON 数组
// - 如果 Store 为空，使用内存中的 IDs 作为 fallback
//
// 用途：冷启动用户的两阶段投递（先发趋势榜单，积累反馈后切换个性化）。
// Trending 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Trending struct {
	Store core.Store
	Key   string   // 存储 key，例如 "trending:events"
	IDs   []string // fallback 内存列表
	Limit int      // 榜单长度，<=0 时取 100
}

func (r *Trending) Name() string        { return "recall.trending" }
func (r *Trending) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *Trending) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *Trending) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	var ids []string

	limit := int64(r.Limit)
	if limit <= 0 {
		limit = 100
	}

	// 优先从 Store 读取（支持 ZRange 或普通 Get）
	if r.Store != nil && r.Key != "" {
		if kvStore, ok := r.Store.(core.KeyValueStore); ok {
			members, err := kvStore.ZRange(ctx, r.Key, 0, limit-1)
			if err == nil && len(members) > 0 {
				ids = members
			}
		} else {
			data, err := r.Store.Get(ctx, r.Key)
			if err == nil {
				var parsed []string
				if json.Unmarshal(data, &parsed) == nil {
					ids = parsed
				}
			}
		}
	}

	// Fallback：使用内存 IDs
	if len(ids) == 0 {
		ids = r.IDs
	}

	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		it := core.NewItem(id)
		it.PutLabel("recall_source", utils.Label{Value: r.Name(), Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// 确保实现了接口
var (
	_ Source        = (*Trending)(nil)
	_ pipeline.Node = (*Trending)(nil)
)
