package filter

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/store"
)

func TestDeliveredFilter_ShouldFilter(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	f := NewDeliveredFilter(kv, "", 7*24*3600) // 7 天窗口

	// 窗口内投递过 / 窗口外投递过
	if err := f.MarkDelivered(ctx, "u", "ev-recent", now.AddDate(0, 0, -3)); err != nil {
		t.Fatalf("MarkDelivered 失败: %v", err)
	}
	if err := f.MarkDelivered(ctx, "u", "ev-old", now.AddDate(0, 0, -30)); err != nil {
		t.Fatalf("MarkDelivered 失败: %v", err)
	}

	rctx := &core.RecommendContext{UserID: "u", Now: now}

	tests := []struct {
		name    string
		eventID string
		want    bool
	}{
		{"recently delivered", "ev-recent", true},
		{"delivered outside window", "ev-old", false},
		{"never delivered", "ev-fresh", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.ShouldFilter(ctx, rctx, core.NewItem(tt.eventID))
			if err != nil {
				t.Fatalf("ShouldFilter 失败: %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter(%s) = %v，期望 %v", tt.eventID, got, tt.want)
			}
		})
	}
}

func TestDeliveredFilter_NoWindowFiltersAll(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	now := time.Now()

	f := NewDeliveredFilter(kv, "", 0)
	_ = f.MarkDelivered(ctx, "u", "ev-ancient", now.AddDate(-1, 0, 0))

	got, err := f.ShouldFilter(ctx, &core.RecommendContext{UserID: "u", Now: now}, core.NewItem("ev-ancient"))
	if err != nil {
		t.Fatalf("ShouldFilter 失败: %v", err)
	}
	if !got {
		t.Error("无时间窗口时投递过的事件应一律过滤")
	}
}

func TestDeliveredFilter_MissingUserKeepsCandidate(t *testing.T) {
	kv := store.NewMemoryStore()
	f := NewDeliveredFilter(kv, "", 3600)

	got, err := f.ShouldFilter(context.Background(), &core.RecommendContext{UserID: "nobody"}, core.NewItem("ev-1"))
	if err != nil {
		t.Fatalf("ShouldFilter 失败: %v", err)
	}
	if got {
		t.Error("无投递记录的用户不应过滤任何候选")
	}
}

func TestFilterNode_Process(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	now := time.Now()

	delivered := NewDeliveredFilter(kv, "", 0)
	_ = delivered.MarkDelivered(ctx, "u", "ev-sent", now)

	node := &FilterNode{Filters: []Filter{delivered}}
	items := []*core.Item{core.NewItem("ev-sent"), core.NewItem("ev-new")}

	out, err := node.Process(ctx, &core.RecommendContext{UserID: "u", Now: now}, items)
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 1 || out[0].ID != "ev-new" {
		t.Errorf("投递过的事件应被过滤: %+v", out)
	}

	// 被过滤的 item 打上 filtered label（观测用）
	lbl, ok := items[0].Labels["filtered"]
	if !ok || lbl.Source != delivered.Name() {
		t.Errorf("filtered label 缺失或错误: %+v", items[0].Labels)
	}
}

func TestFilterNode_NoFilters(t *testing.T) {
	node := &FilterNode{}
	items := []*core.Item{core.NewItem("ev-1")}

	out, err := node.Process(context.Background(), &core.RecommendContext{UserID: "u"}, items)
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("无过滤器时应原样返回: %d", len(out))
	}
}
