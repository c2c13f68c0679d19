package core

import (
	"math"
	"testing"
)

func TestCategories_ClosedSet(t *testing.T) {
	if len(Categories) != 13 {
		t.Fatalf("期望 13 个类目，实际得到 %d", len(Categories))
	}
	for _, c := range Categories {
		if !ValidateCategory(c) {
			t.Errorf("类目 %s 未通过校验", c)
		}
		if c.Description() == "" {
			t.Errorf("类目 %s 缺少描述片段", c)
		}
	}
	if ValidateCategory("made_up") {
		t.Error("未知类目不应通过校验")
	}
	if ValidateCategory(CategoryUnknown) {
		t.Error("空类目不应通过校验")
	}
}

func TestUniformBaseline(t *testing.T) {
	if math.Abs(UniformBaseline-1.0/13.0) > 1e-12 {
		t.Errorf("均匀基线应为 1/13，实际得到 %v", UniformBaseline)
	}
}

func TestPreferenceScores_Get(t *testing.T) {
	var nilPrefs PreferenceScores
	if got := nilPrefs.Get(CategoryTechInnovation); got != UniformBaseline {
		t.Errorf("nil 偏好表应返回均匀基线，实际得到 %v", got)
	}

	prefs := PreferenceScores{CategoryTechInnovation: 0.9}
	if got := prefs.Get(CategoryTechInnovation); got != 0.9 {
		t.Errorf("期望 0.9，实际得到 %v", got)
	}
	if got := prefs.Get(CategoryArtsMusic); got != UniformBaseline {
		t.Errorf("未登记类目应返回均匀基线，实际得到 %v", got)
	}
}

func TestPreferenceMatch(t *testing.T) {
	prefs := PreferenceScores{CategoryTechInnovation: 0.8}

	tests := []struct {
		name     string
		category Category
		prefs    PreferenceScores
		want     float64
		wantKind MatchKind
	}{
		{"explicit preference", CategoryTechInnovation, prefs, 0.8, MatchPreference},
		{"unknown category", CategoryUnknown, prefs, NeutralMatchScore, MatchNeutral},
		{"unregistered category", CategoryArtsMusic, prefs, NeutralMatchScore, MatchNeutral},
		{"nil preferences", CategoryTechInnovation, nil, NeutralMatchScore, MatchNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, kind := PreferenceMatch(tt.category, tt.prefs)
			if got != tt.want || kind != tt.wantKind {
				t.Errorf("PreferenceMatch = (%v, %s)，期望 (%v, %s)", got, kind, tt.want, tt.wantKind)
			}
		})
	}
}

func TestAction_Weight(t *testing.T) {
	tests := []struct {
		action Action
		want   float64
	}{
		{ActionLike, 1.0},
		{ActionClick, 0.5},
		{ActionDislike, -0.5},
		{ActionView, 0},
		{Action("bookmark"), 0},
	}
	for _, tt := range tests {
		if got := tt.action.Weight(); got != tt.want {
			t.Errorf("%s 权重 = %v，期望 %v", tt.action, got, tt.want)
		}
	}
}

func TestItem_Recommendation(t *testing.T) {
	it := NewItem("ev-1")
	it.Similarity = 0.9
	it.Recency = 0.8
	it.Score = 0.87
	it.Reason = "Matches your interests closely"

	rec := it.Recommendation(3)
	if rec.EventID != "ev-1" || rec.Rank != 3 {
		t.Errorf("映射错误: %+v", rec)
	}
	if rec.Similarity != 0.9 || rec.Recency != 0.8 || rec.FinalScore != 0.87 {
		t.Errorf("分数字段映射错误: %+v", rec)
	}
	if rec.Reason != "Matches your interests closely" {
		t.Errorf("理由映射错误: %q", rec.Reason)
	}
}

func TestItemFromCandidate(t *testing.T) {
	c := Candidate{EventID: "ev-1", Similarity: 0.75, Category: CategoryTechInnovation}
	it := ItemFromCandidate(c)

	if it.ID != "ev-1" || it.Score != 0.75 || it.Similarity != 0.75 {
		t.Errorf("候选映射错误: %+v", it)
	}
	if it.Category != CategoryTechInnovation {
		t.Errorf("类目映射错误: %s", it.Category)
	}
}
