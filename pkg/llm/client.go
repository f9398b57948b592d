// Package llm provides clients for OpenAI-compatible chat completion APIs.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"rag-system-go/internal/config"
	"rag-system-go/pkg/log"
)

// Message 表示一条角色消息。
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client defines the interface for a chat model client.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// NewClient creates a chat client based on the provider in the config.
// "stub" yields a deterministic local client so the service stays
// queryable (with degraded answers) without a real backend.
func NewClient(cfg config.LLMConfig) Client {
	if cfg.Provider == "stub" {
		log.Infof("[LLMClient] 使用确定性 stub 回答客户端")
		return &stubClient{}
	}
	return &openAICompatibleClient{
		cfg:    cfg,
		client: &http.Client{},
	}
}

type openAICompatibleClient struct {
	cfg    config.LLMConfig
	client *http.Client
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat 以非流式方式调用聊天接口并返回完整回答文本。
func (c *openAICompatibleClient) Chat(ctx context.Context, messages []Message) (string, error) {
	log.Infof("[LLMClient] 开始调用 Chat API, model: %s, messages: %d", c.cfg.Model, len(messages))

	reqBody := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Stream:      false,
		Temperature: c.cfg.Temperature,
	}
	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/chat/completions", bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Errorf("[LLMClient] 调用 Chat API 失败, error: %v", err)
		return "", fmt.Errorf("failed to call chat api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf("[LLMClient] Chat API 返回非 200 状态码: %s", resp.Status)
		return "", fmt.Errorf("chat api returned non-200 status: %s", resp.Status)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		log.Errorf("[LLMClient] 解析 Chat API 响应失败, error: %v", err)
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("chat api returned no choices")
	}

	answer := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	log.Infof("[LLMClient] Chat API 调用成功, 回答长度: %d", len(answer))
	return answer, nil
}

// stubClient 始终返回固定回答，用于未配置真实模型的部署与测试。
type stubClient struct{}

func (c *stubClient) Chat(_ context.Context, _ []Message) (string, error) {
	return "This is a fallback fake LLM response.", nil
}
