package ai

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

	"github.com/ghostfund/gfs/internal/config"
)

// ErrNotConfigured 未配置API密钥
var ErrNotConfigured = errors.New("completion API key is not configured")

// Client 文本补全服务客户端
// 按照固定的提示词模板调用远端补全API，返回生成的文本。
// 所有请求受HTTP客户端超时约束。
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// RiskAnalysis 项目风险分析结果
// RiskScore 和 Recommendation 由正则从原始文本中提取，提取失败时取默认值。
type RiskAnalysis struct {
	Analysis       string `json:"analysis"`
	RiskScore      int    `json:"riskScore"`
	Recommendation string `json:"recommendation"`
}

// ChatResult 聊天响应
type ChatResult struct {
	Response  string   `json:"response"`
	Citations []string `json:"citations,omitempty"`
}

// New 创建补全服务客户端
func New(cfg config.AIConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.perplexity.ai"
	}

	model := cfg.Model
	if model == "" {
		model = "sonar"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 500
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete 发送单条提示词并返回生成文本
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	text, _, err := c.complete(ctx, []chatMessage{
		{Role: "user", Content: prompt},
	})
	return text, err
}

// Chat 使用固定的平台系统提示词进行对话
func (c *Client) Chat(ctx context.Context, message string) (*ChatResult, error) {
	text, citations, err := c.complete(ctx, []chatMessage{
		{Role: "system", Content: chatSystemPrompt},
		{Role: "user", Content: message},
	})
	if err != nil {
		return nil, err
	}
	return &ChatResult{Response: text, Citations: citations}, nil
}

// AnalyzeRisk 分析项目描述的潜在风险
func (c *Client) AnalyzeRisk(ctx context.Context, description string) (*RiskAnalysis, error) {
	text, err := c.Complete(ctx, fmt.Sprintf(riskPromptTemplate, description))
	if err != nil {
		return nil, err
	}

	return &RiskAnalysis{
		Analysis:       text,
		RiskScore:      ParseRiskScore(text),
		Recommendation: ParseRecommendation(text),
	}, nil
}

// Suggest 生成项目描述的改进建议
func (c *Client) Suggest(ctx context.Context, description string) (string, error) {
	return c.Complete(ctx, fmt.Sprintf(suggestionPromptTemplate, description))
}

// complete 调用补全API
func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, []string, error) {
	if c.apiKey == "" {
		return "", nil, ErrNotConfigured
	}

	body, err := json.Marshal(completionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read completion response: %w", err)
	}

	var parsed completionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", nil, fmt.Errorf("invalid completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", nil, fmt.Errorf("completion API error: %s", parsed.Error.Message)
		}
		return "", nil, fmt.Errorf("completion API returned status %d", resp.StatusCode)
	}

	if len(parsed.Choices) == 0 {
		return "", nil, errors.New("completion API returned no choices")
	}

	return parsed.Choices[0].Message.Content, parsed.Citations, nil
}
