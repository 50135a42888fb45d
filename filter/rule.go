package filter

import (
	"context"

	"github.com/rushteam/hybrec/core"
	"github.com/rushteam/hybrec/pkg/dsl"
)

// RuleFilter 是基于 CEL 表达式的规则过滤器，表达式命中即剔除。
//
// 示例规则：
//   - `item.score < 0.0`                        剔除负分候选
//   - `label.recall_source.value == "latent" && item.score < 0.1`
//
// 规则来自引擎配置文件，运营可按场景增删。
type RuleFilter struct {
	expr string
	prg  *dsl.Program
}

// NewRuleFilter 编译一条规则表达式；表达式为空或非法时返回错误（配置期失败）。
func NewRuleFilter(expr string) (*RuleFilter, error) {
	if expr == "" {
		return nil, core.NewDomainError("filter", core.ErrorCodeInvalidInput, "filter: empty rule expression")
	}
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &RuleFilter{expr: expr, prg: prg}, nil
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(_ context.Context, item *core.Item) (bool, error) {
	if item == nil {
		return true, nil
	}
	return f.prg.EvalItem(item)
}
