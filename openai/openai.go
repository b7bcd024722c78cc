package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"rooftop-vision/vision"
)

const (
	DefaultBaseURL = "https://api.openai.com"
	DefaultModel   = "gpt-4o"

	// APIKeyEnv is the environment variable holding the OpenAI API key.
	APIKeyEnv = "OPENAI_API_KEY"

	chatCompletionsPath = "/v1/chat/completions"
)

type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ImageContent struct {
	Type     string   `json:"type"`
	ImageURL ImageURL `json:"image_url"`
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type ChatResponse struct {
	Choices []struct {
		Message *struct {
			Content any `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error json.RawMessage `json:"error"`
}

// Provider talks to the OpenAI chat completions endpoint with Bearer auth.
type Provider struct {
	baseURL string
	model   string
}

// NewProvider creates an OpenAI provider. Empty arguments select the defaults.
func NewProvider(baseURL, model string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

// SourceName identifies this provider in logs and metrics
func (p *Provider) SourceName() string { return "ChatGPT" }

func (p *Provider) APIKeyEnv() string { return APIKeyEnv }

func (p *Provider) ErrorLabel() string { return "OpenAI" }

// encodeImageToBase64 converts image bytes to a base64 data URL
func encodeImageToBase64(imageData []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", vision.ImageMimeType, base64.StdEncoding.EncodeToString(imageData))
}

// NewRequest builds a chat completion request with the prompt and the image
// as a data URI.
func (p *Provider) NewRequest(ctx context.Context, apiKey string, imageData []byte) (*http.Request, error) {
	reqBody := ChatRequest{
		Model: p.model,
		Messages: []Message{
			{
				Role: "user",
				Content: []any{
					TextContent{
						Type: "text",
						Text: vision.Prompt,
					},
					ImageContent{
						Type: "image_url",
						ImageURL: ImageURL{
							URL: encodeImageToBase64(imageData),
						},
					},
				},
			},
		},
		Temperature: vision.Temperature,
		MaxTokens:   vision.MaxOutputTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+chatCompletionsPath, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// ReplyText returns the content of the first choice. Array content is
// flattened to its text parts.
func (p *Provider) ReplyText(body []byte) (string, error) {
	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if apiErr := vision.EnvelopeError(chatResp.Error); apiErr != nil {
		return "", apiErr
	}
	if len(chatResp.Choices) == 0 {
		return "", &vision.ShapeError{Message: "No response choices from API"}
	}

	msg := chatResp.Choices[0].Message
	if msg == nil {
		return "", vision.ErrInvalidStructure()
	}

	switch content := msg.Content.(type) {
	case string:
		return content, nil
	case []any:
		var texts []string
		for _, item := range content {
			part, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := part["text"].(string); ok && text != "" {
				texts = append(texts, text)
			}
		}
		if len(texts) > 0 {
			return strings.Join(texts, "\n"), nil
		}
	}
	return "", vision.ErrInvalidStructure()
}
