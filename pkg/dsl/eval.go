// Package dsl 基于 CEL (Common Expression Language) 实现候选过滤规则的表达式求值。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/hybrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// getCELEnv 获取或创建 CEL 环境，定义可用变量。
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是一条编译后的过滤规则，可对任意多个 Item 复用求值。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：item.score > 0.7 / item.confidence <= 0.5
//   - 标签：label.recall_source.value == "popularity"
//   - 逻辑：label.strategy.value == "content" && item.confidence > 0.3
//
// 注意：访问不存在的 label key 会产生求值错误，
// 调用方应按"规则出错不过滤"的约定处理。
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译一条规则表达式。空表达式视为恒真。
func Compile(expr string) (*Program, error) {
	p := &Program{expr: expr}
	if expr == "" {
		return p, nil
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	p.prg = prg
	return p, nil
}

// EvalItem 对单个 Item 求值，返回布尔结果。
func (p *Program) EvalItem(item *core.Item) (bool, error) {
	if p.prg == nil {
		return true, nil
	}

	out, _, err := p.prg.Eval(buildInput(item))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: expression must return boolean, got %T", p.expr, out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据。
func buildInput(item *core.Item) map[string]any {
	labels := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = map[string]any{
			"value":  v.Value,
			"source": v.Source,
		}
	}
	return map[string]any{
		"item": map[string]any{
			"id":         item.ID,
			"score":      item.Score,
			"confidence": item.Confidence,
		},
		"label": labels,
	}
}
