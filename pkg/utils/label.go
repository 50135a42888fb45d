package utils

import "strings"

// Label 是推荐链路中的可解释标记：记录一条结果经过了哪些策略/过滤环节。
// Value 与 Source 的语义由业务自定义；这里只提供标准化的合并与查询规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / engine / explain ...
}

// MergeLabel 用于合并同名 Label，遵循"保留历史、可追踪"的默认策略。
// - Value: 以 '|' 累积
// - Source: 以 ',' 累积
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}

// Values 拆出累积的 Value 列表。
func (l Label) Values() []string {
	if l.Value == "" {
		return nil
	}
	return strings.Split(l.Value, "|")
}

// Has 检查累积的 Value 中是否包含 v。
func (l Label) Has(v string) bool {
	for _, got := range l.Values() {
		if got == v {
			return true
		}
	}
	return false
}
