// Package hybrec 是一个面向电商目录的混合推荐引擎（Hybrid Recommender）。
//
// 设计要点：
// - Strategy-first: 每次请求确定性地选择一条策略（personalized → content → popularity），
//   弱策略兜底强策略，冷启动不是错误
// - Snapshot-first: 模型工件（隐向量、热度回退表）启动时加载为不可变快照，
//   热更新走原子指针交换，打分路径零锁
// - Confidence 是策略内相对排名，跨策略不可比较
package hybrec

import (
	"github.com/rushteam/hybrec/core"
	"github.com/rushteam/hybrec/engine"
)

// 轻量 facade：便于用户直接 import "hybrec" 使用核心抽象。
type Engine = engine.Engine
type Request = core.Request
type Response = core.Response
type Recommendation = core.Recommendation
type Strategy = core.Strategy

const (
	StrategyPersonalized = core.StrategyPersonalized
	StrategyContent      = core.StrategyContent
	StrategyPopularity   = core.StrategyPopularity
	StrategyNone         = core.StrategyNone
)
