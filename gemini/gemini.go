package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"rooftop-vision/vision"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash"

	// APIKeyEnv is the environment variable holding the Google API key.
	APIKeyEnv = "GOOGLE_API_KEY"

	topK = 32
	topP = 1
)

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64  `json:"temperature"`
	TopK            int      `json:"topK"`
	TopP            float64  `json:"topP"`
	MaxOutputTokens int      `json:"maxOutputTokens"`
	StopSequences   []string `json:"stopSequences"`
}

type geminiRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error json.RawMessage `json:"error"`
}

// Provider talks to the Gemini generateContent endpoint. The API key travels
// as the "key" query parameter.
type Provider struct {
	baseURL string
	model   string
}

// NewProvider creates a Gemini provider. Empty arguments select the defaults.
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

func (p *Provider) SourceName() string { return "Gemini" }

func (p *Provider) APIKeyEnv() string { return APIKeyEnv }

func (p *Provider) ErrorLabel() string { return "Google" }

// NewRequest builds a generateContent request with the prompt and the image
// as inline base64 data.
func (p *Provider) NewRequest(ctx context.Context, apiKey string, imageData []byte) (*http.Request, error) {
	reqBody := geminiRequest{
		Contents: []content{
			{
				Parts: []part{
					{Text: vision.Prompt},
					{
						InlineData: &inlineData{
							MimeType: vision.ImageMimeType,
							Data:     base64.StdEncoding.EncodeToString(imageData),
						},
					},
				},
			},
		},
		GenerationConfig: generationConfig{
			Temperature:     vision.Temperature,
			TopK:            topK,
			TopP:            topP,
			MaxOutputTokens: vision.MaxOutputTokens,
			StopSequences:   []string{},
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint, err := url.Parse(fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, p.model))
	if err != nil {
		return nil, fmt.Errorf("failed to build endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("key", apiKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// ReplyText returns the first non-empty text part of the first candidate.
func (p *Provider) ReplyText(body []byte) (string, error) {
	var gr geminiResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if apiErr := vision.EnvelopeError(gr.Error); apiErr != nil {
		return "", apiErr
	}
	if len(gr.Candidates) == 0 {
		return "", &vision.ShapeError{Message: "No response candidates from API"}
	}

	candidate := gr.Candidates[0]
	if candidate.Content == nil {
		return "", vision.ErrInvalidStructure()
	}
	for _, pt := range candidate.Content.Parts {
		if pt.Text != "" {
			return pt.Text, nil
		}
	}
	return "", vision.ErrInvalidStructure()
}
