package filter

import (
	"context"
	"time"

	"github.com/rushteam/eventrec/core"
)

// DeliveredFilter 是投递历史过滤器，过滤掉最近已经推送给用户的事件，
// 避免同一事件在相邻两期简报中重复出现。
//
// 数据源是一个有序集合：member 为事件 ID，score 为投递时间的 Unix 秒。
// 实际 key 为 {KeyPrefix}:{UserID}。
//
// 注意：交互过的事件由召回阶段的排除集负责，本过滤器只覆盖
// "已投递但用户未反馈" 的事件。
type DeliveredFilter struct {
	// Store 用于读取用户投递历史
	Store core.KeyValueStore

	// KeyPrefix 是 Store 中的 key 前缀，默认 "user:delivered"
	KeyPrefix string

	// TimeWindow 是投递时间窗口（秒）：只过滤窗口内投递过的事件。
	// <=0 时不按时间过滤（榜单内的全部事件都过滤）。
	TimeWindow int64
}

// NewDeliveredFilter 创建一个投递历史过滤器。
func NewDeliveredFilter(kv core.KeyValueStore, keyPrefix string, timeWindow int64) *DeliveredFilter {
	return &DeliveredFilter{
		Store:      kv,
		KeyPrefix:  keyPrefix,
		TimeWindow: timeWindow,
	}
}

func (f *DeliveredFilter) Name() string {
	return "filter.delivered"
}

func (f *DeliveredFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil || rctx.UserID == "" {
		return false, nil
	}
	if f.Store == nil {
		return false, nil
	}

	keyPrefix := f.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "user:delivered"
	}
	key := keyPrefix + ":" + rctx.UserID

	deliveredAt, err := f.Store.ZScore(ctx, key, item.ID)
	if err != nil {
		// key 不存在或读取失败时保留候选，不中断链路
		return false, nil
	}

	if f.TimeWindow <= 0 {
		return true, nil
	}
	cutoff := rctx.At().Unix() - f.TimeWindow
	return int64(deliveredAt) >= cutoff, nil
}

// MarkDelivered 记录一次投递（由投递层在发送成功后调用）。
func (f *DeliveredFilter) MarkDelivered(ctx context.Context, userID, eventID string, at time.Time) error {
	keyPrefix := f.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "user:delivered"
	}
	return f.Store.ZAdd(ctx, keyPrefix+":"+userID, float64(at.Unix()), eventID)
}

var _ Filter = (*DeliveredFilter)(nil)
