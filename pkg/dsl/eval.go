// Package dsl 提供基于 CEL (Common Expression Language) 的事件元数据
// 过滤表达式，用于向量检索阶段的条件召回。
package dsl

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/eventrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("category", cel.StringType),
		cel.Variable("days_old", cel.IntType),
		cel.Variable("created_at", cel.TimestampType),
	)
}

func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	if celEnv == nil && err == nil {
		err = fmt.Errorf("cel env not initialized")
	}
	return celEnv, err
}

// Predicate 是编译后的事件元数据过滤表达式。
// 表达式编译一次后可对任意多条元数据求值，求值是线程安全的。
//
// 可用变量：
//   - category   string    事件类目，如 "tech_innovation"
//   - days_old   int       事件距今的整天数（相对求值时刻）
//   - created_at timestamp 事件创建时间
//
// 示例：
//   - `category == "sports_fitness"`
//   - `days_old < 14 && category != "volunteering_community"`
//   - `category in ["arts_music", "social_cultural"]`
type Predicate struct {
	expr string
	prg  cel.Program
}

// Compile 编译一条元数据过滤表达式。表达式必须返回布尔值。
func Compile(expr string) (*Predicate, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("expression %q must return bool, got %v", expr, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Predicate{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Predicate) String() string { return p.expr }

// Match 对一条事件元数据求值。求值出错时按不匹配处理。
func (p *Predicate) Match(meta core.VectorMeta, now time.Time) bool {
	daysOld := int64(now.Sub(meta.CreatedAt).Hours() / 24)
	if daysOld < 0 {
		daysOld = 0
	}
	out, _, err := p.prg.Eval(map[string]any{
		"category":   string(meta.Category),
		"days_old":   daysOld,
		"created_at": meta.CreatedAt,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// Filter 将表达式包装为召回阶段可用的元数据过滤函数。
// now 固定为包装时刻的求值基准，保证一次检索内 days_old 一致。
func (p *Predicate) Filter(now time.Time) func(core.VectorMeta) bool {
	return func(meta core.VectorMeta) bool {
		return p.Match(meta, now)
	}
}
