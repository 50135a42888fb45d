package engine

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/hybrec/artifact"
	"github.com/rushteam/hybrec/core"
	"github.com/rushteam/hybrec/explain"
	"github.com/rushteam/hybrec/filter"
	"github.com/rushteam/hybrec/pkg/conv"
	"github.com/rushteam/hybrec/service"
)

// Config 是引擎的配置结构（YAML）。
//
// 示例：
//
//	engine:
//	  min_top_k: 1
//	  max_top_k: 20
//	  min_history: 5
//	  explain:
//	    endpoint: https://api.groq.com/openai/v1/chat/completions
//	    model: llama-3.1-8b-instant
//	    api_key_env: GROQ_API_KEY
//	    timeout_seconds: 3
//	    max_concurrent: 4
//	  filters:
//	    - type: delisted
//	      config: { key: "catalog:delisted" }
//	    - type: rule
//	      config: { expr: 'item.score < 0.0' }
type Config struct {
	Engine struct {
		MinTopK    int            `yaml:"min_top_k"`
		MaxTopK    int            `yaml:"max_top_k"`
		MinHistory int            `yaml:"min_history"`
		Explain    ExplainConfig  `yaml:"explain"`
		Filters    []FilterConfig `yaml:"filters"`
	} `yaml:"engine"`
}

// ExplainConfig 配置外部解释服务；Endpoint 为空表示只走模板。
type ExplainConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	APIKeyEnv      string `yaml:"api_key_env"` // 密钥从环境变量读取，不进配置文件
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxConcurrent  int    `yaml:"max_concurrent"`
}

// FilterConfig 是单个过滤器的配置。
type FilterConfig struct {
	Type   string         `yaml:"type"`   // delisted / rule
	Config map[string]any `yaml:"config"` // 过滤器特定配置
}

// LoadConfig 从 YAML 文件加载引擎配置。
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Build 根据配置构建引擎。
// blacklistStore 供 delisted 过滤器读取下架名单，可为 nil。
func (c *Config) Build(holder *artifact.Holder, cat core.Catalog, blacklistStore core.Store, logger *zap.Logger) (*Engine, error) {
	opts := []Option{}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	if c.Engine.MinTopK > 0 || c.Engine.MaxTopK > 0 {
		opts = append(opts, WithTopKBounds(c.Engine.MinTopK, c.Engine.MaxTopK))
	}
	if c.Engine.MinHistory > 0 {
		opts = append(opts, WithMinHistory(c.Engine.MinHistory))
	}

	filters, err := c.buildFilters(blacklistStore)
	if err != nil {
		return nil, err
	}
	if len(filters) > 0 {
		opts = append(opts, WithFilters(filters...))
	}

	if svc := c.buildExplainService(); svc != nil {
		timeout := time.Duration(c.Engine.Explain.TimeoutSeconds) * time.Second
		maxConcurrent := c.Engine.Explain.MaxConcurrent
		opts = append(opts, WithExplainService(svc, func(a *explain.Adapter) {
			a.Timeout = timeout
			a.MaxConcurrent = maxConcurrent
		}))
	}

	return New(holder, cat, opts...), nil
}

func (c *Config) buildFilters(blacklistStore core.Store) ([]filter.Filter, error) {
	filters := make([]filter.Filter, 0, len(c.Engine.Filters))
	for _, fc := range c.Engine.Filters {
		switch fc.Type {
		case "delisted":
			f := &filter.DelistedFilter{
				IDs:   conv.SliceAnyToString(fc.Config["ids"]),
				Store: blacklistStore,
				Key:   conv.ConfigGet[string](fc.Config, "key", ""),
			}
			filters = append(filters, f)
		case "rule":
			expr := conv.ConfigGet[string](fc.Config, "expr", "")
			f, err := filter.NewRuleFilter(expr)
			if err != nil {
				return nil, fmt.Errorf("build rule filter: %w", err)
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %s", fc.Type)
		}
	}
	return filters, nil
}

func (c *Config) buildExplainService() core.ExplainService {
	ec := c.Engine.Explain
	if ec.Endpoint == "" || ec.Model == "" {
		return nil
	}
	llmOpts := []service.LLMOption{}
	if ec.APIKeyEnv != "" {
		if key := os.Getenv(ec.APIKeyEnv); key != "" {
			llmOpts = append(llmOpts, service.WithAPIKey(key))
		}
	}
	if ec.TimeoutSeconds > 0 {
		llmOpts = append(llmOpts, service.WithTimeout(time.Duration(ec.TimeoutSeconds)*time.Second))
	}
	return service.NewLLMClient(ec.Endpoint, ec.Model, llmOpts...)
}
