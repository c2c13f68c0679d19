package core

import (
	"time"

	"github.com/rushteam/eventrec/pkg/utils"
)

// RecommendContext 承载单次推荐请求的用户/时间/参数信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string

	// Now 是重排打分的参照时间。零值时由节点取 time.Now()，
	// 显式注入可保证测试与回放的确定性。
	Now time.Time

	// UserEmbedding 由画像构建节点写入，召回节点消费。
	// 每次请求重新计算，请求结束即丢弃，不做缓存。
	UserEmbedding []float64

	// Exclude 是本次请求要排除的事件 ID 集合（用户交互过的全部事件）。
	Exclude map[string]struct{}

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级上下文参数
	Params map[string]any
}

// At 返回打分参照时间，未注入时取当前时间。
func (rctx *RecommendContext) At() time.Time {
	if rctx == nil || rctx.Now.IsZero() {
		return time.Now().UTC()
	}
	return rctx.Now
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
