package openai

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

	"RWA-Chain/internal/llm"
)

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultModelName = "gpt-4o-mini"
	defaultTimeout   = 30 * time.Second
)

// Config 描述了调用 Chat Completions API 所需的信息。
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client 通过 HTTP 调用兼容 OpenAI 协议的大模型完成字段抽取。
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient 根据配置创建客户端。
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("未提供 API Key")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModelName
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Extract 调用大模型抽取资产字段，并对回复做严格的 JSON 反序列化。
// 任何解析失败都会返回错误，由上层触发规则降级路径。
func (c *Client) Extract(ctx context.Context, req llm.Request) (*llm.Extraction, error) {
	payload, err := c.buildPayload(req)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("构建抽取请求失败: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("请求抽取服务失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("抽取服务返回错误状态 %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("解析抽取服务响应失败: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, errors.New("抽取服务响应中没有有效的 choices")
	}

	content := stripMarkdownFence(decoded.Choices[0].Message.Content)
	if content == "" || !strings.HasPrefix(content, "{") {
		return nil, errors.New("抽取服务未返回 JSON 对象")
	}

	var extraction llm.Extraction
	if err := json.Unmarshal([]byte(content), &extraction); err != nil {
		return nil, fmt.Errorf("抽取结果不符合 JSON 契约: %w", err)
	}
	return &extraction, nil
}

func (c *Client) buildPayload(req llm.Request) ([]byte, error) {
	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	messages := []message{
		{
			Role:    "system",
			Content: systemPrompt,
		},
		{
			Role:    "user",
			Content: buildUserPrompt(req),
		},
	}

	body := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": 0.1,
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("序列化抽取请求失败: %w", err)
	}
	return encoded, nil
}

const systemPrompt = "" +
	"You extract structured information from real-world asset descriptions. " +
	"Always respond with a compact JSON object: " +
	"{\"asset_type\": string, \"estimated_value\": number, \"location\": string, \"description\": string}. " +
	"asset_type is one of [real_estate, vehicle, artwork, equipment, commodity] or \"unknown\". " +
	"estimated_value has no commas or currency symbols. " +
	"location is as precise as possible, e.g. \"Bandra, Mumbai, India\"."

func buildUserPrompt(req llm.Request) string {
	var builder strings.Builder
	builder.WriteString("## Asset description\n")
	builder.WriteString(strings.TrimSpace(req.Input))
	builder.WriteString("\n\nReturn only valid JSON.")
	return builder.String()
}

// stripMarkdownFence 去掉模型偶尔包裹的 ```json 代码块标记，
// 并丢弃 JSON 对象之前的任何前导文本。
func stripMarkdownFence(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)
	if start := strings.Index(content, "{"); start > 0 {
		content = content[start:]
	}
	return content
}
