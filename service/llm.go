// Package service 提供外部模型服务的客户端实现。
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rushteam/hybrec/core"
)

// LLMClient 是 OpenAI 兼容 chat completions 接口的客户端，
// 用于生成推荐解释文案（Groq / OpenAI / 自建网关均可）。
//
// 工程特征：
//   - 严格超时：这是请求链路上唯一的网络调用，必须有界
//   - 失败分类：超时/配额/格式非法/不可用，供上层打点与兜底
//   - 成功时只做 TrimSpace，不做其他后处理
type LLMClient struct {
	// Endpoint 服务端点，例如 "https://api.groq.com/openai/v1/chat/completions"
	Endpoint string

	// Model 模型名称，例如 "llama-3.1-8b-instant"
	Model string

	// APIKey Bearer 认证密钥；为空时不携带认证头
	APIKey string

	// Timeout 单次请求超时，默认 5s
	Timeout time.Duration

	// MaxTokens 生成上限，默认 60（一句话解释足够）
	MaxTokens int

	httpClient *http.Client
}

// LLMOption 是 LLMClient 的配置选项。
type LLMOption func(*LLMClient)

// WithAPIKey 设置认证密钥。
func WithAPIKey(key string) LLMOption {
	return func(c *LLMClient) { c.APIKey = key }
}

// WithTimeout 设置请求超时。
func WithTimeout(timeout time.Duration) LLMOption {
	return func(c *LLMClient) { c.Timeout = timeout }
}

// WithMaxTokens 设置生成上限。
func WithMaxTokens(n int) LLMOption {
	return func(c *LLMClient) { c.MaxTokens = n }
}

// WithHTTPClient 注入自定义 http.Client（测试用）。
func WithHTTPClient(hc *http.Client) LLMOption {
	return func(c *LLMClient) { c.httpClient = hc }
}

// NewLLMClient 创建一个解释服务客户端。
func NewLLMClient(endpoint, model string, opts ...LLMOption) *LLMClient {
	client := &LLMClient{
		Endpoint:  endpoint,
		Model:     model,
		Timeout:   5 * time.Second,
		MaxTokens: 60,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: client.Timeout}
	}
	return client
}

func (c *LLMClient) Name() string { return "llm_chat" }

// chat completions 协议结构（只保留用到的字段）

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Explain 为单条推荐生成一句解释文案。
func (c *LLMClient) Explain(ctx context.Context, req *core.ExplainRequest) (string, error) {
	payload := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a helpful e-commerce recommendation assistant. Generate concise, personalized product explanations.",
			},
			{
				Role:    "user",
				Content: buildPrompt(req),
			},
		},
		Temperature: 0.7,
		MaxTokens:   c.MaxTokens,
		TopP:        0.9,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", core.ErrExplainMalformed
	}

	callCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", core.ErrExplainUnavailable
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil {
			return "", core.ErrExplainTimeout
		}
		return "", core.ErrExplainUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", core.ErrExplainQuota
	case resp.StatusCode != http.StatusOK:
		return "", core.ErrExplainUnavailable
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", core.ErrExplainUnavailable
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", core.ErrExplainMalformed
	}
	if len(parsed.Choices) == 0 {
		return "", core.ErrExplainMalformed
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func (c *LLMClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// buildPrompt 由用户历史摘要与候选商品字段构造提示词。
func buildPrompt(req *core.ExplainRequest) string {
	rec := req.Recommendation

	userContext := "a broad mix of products"
	switch {
	case req.Summary.TopCategory != "" && len(req.Summary.RecentTitles) > 0:
		userContext = fmt.Sprintf("categories like %s and products like %s",
			req.Summary.TopCategory, strings.Join(req.Summary.RecentTitles, ", "))
	case req.Summary.TopCategory != "":
		userContext = "categories like " + req.Summary.TopCategory
	}

	rating := "N/A"
	if rec.Rating != nil {
		rating = fmt.Sprintf("%.1f", *rec.Rating)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an e-commerce recommendation assistant.\n")
	fmt.Fprintf(&b, "User's purchase history shows interest in: %s\n\n", userContext)
	fmt.Fprintf(&b, "Recommended product (rank %d, strategy %s):\n", req.Rank, rec.Strategy)
	fmt.Fprintf(&b, "%s - %s (Rating: %s)\n\n", rec.Title, rec.Category, rating)
	fmt.Fprintf(&b, "Write exactly ONE sentence explaining why this product is recommended based on the user's interests. ")
	fmt.Fprintf(&b, "Keep it under 25 words and make it sound natural and helpful.")
	return b.String()
}

// 确保实现 core.ExplainService 接口
var _ core.ExplainService = (*LLMClient)(nil)
