package dsl

import (
	"testing"
	"time"

	"github.com/rushteam/eventrec/core"
)

func TestCompileAndMatch(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		expr string
		meta core.VectorMeta
		want bool
	}{
		{
			name: "category equals",
			expr: `category == "tech_innovation"`,
			meta: core.VectorMeta{Category: core.CategoryTechInnovation, CreatedAt: now},
			want: true,
		},
		{
			name: "category not equals",
			expr: `category == "tech_innovation"`,
			meta: core.VectorMeta{Category: core.CategoryArtsMusic, CreatedAt: now},
			want: false,
		},
		{
			name: "days old window",
			expr: `days_old < 14`,
			meta: core.VectorMeta{Category: core.CategoryArtsMusic, CreatedAt: now.AddDate(0, 0, -7)},
			want: true,
		},
		{
			name: "days old outside window",
			expr: `days_old < 14`,
			meta: core.VectorMeta{CreatedAt: now.AddDate(0, 0, -30)},
			want: false,
		},
		{
			name: "combined",
			expr: `days_old < 14 && category != "volunteering_community"`,
			meta: core.VectorMeta{Category: core.CategoryVolunteering, CreatedAt: now},
			want: false,
		},
		{
			name: "category in list",
			expr: `category in ["arts_music", "social_cultural"]`,
			meta: core.VectorMeta{Category: core.CategoryArtsMusic, CreatedAt: now},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile(%q) 失败: %v", tt.expr, err)
			}
			if got := pred.Match(tt.meta, now); got != tt.want {
				t.Errorf("Match = %v，期望 %v", got, tt.want)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	if _, err := Compile(`category ==`); err == nil {
		t.Error("语法错误的表达式应编译失败")
	}
	if _, err := Compile(`category`); err == nil {
		t.Error("非布尔表达式应编译失败")
	}
	if _, err := Compile(`unknown_var == 1`); err == nil {
		t.Error("未声明变量应编译失败")
	}
}

func TestPredicate_Filter(t *testing.T) {
	now := time.Now()
	pred, err := Compile(`category == "sports_fitness"`)
	if err != nil {
		t.Fatalf("Compile 失败: %v", err)
	}

	filter := pred.Filter(now)
	if !filter(core.VectorMeta{Category: core.CategorySportsFitness, CreatedAt: now}) {
		t.Error("匹配的元数据应通过过滤")
	}
	if filter(core.VectorMeta{Category: core.CategoryArtsMusic, CreatedAt: now}) {
		t.Error("不匹配的元数据不应通过过滤")
	}
}

func TestPredicate_FutureEventDaysOldClamped(t *testing.T) {
	now := time.Now()
	pred, err := Compile(`days_old == 0`)
	if err != nil {
		t.Fatalf("Compile 失败: %v", err)
	}

	// 未来事件的 days_old 不应为负
	if !pred.Match(core.VectorMeta{CreatedAt: now.AddDate(0, 0, 3)}, now) {
		t.Error("未来事件 days_old 应钳到 0")
	}
}
