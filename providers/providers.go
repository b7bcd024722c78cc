package providers

import (
	"fmt"

	"rooftop-vision/config"
	"rooftop-vision/gemini"
	"rooftop-vision/openai"
	"rooftop-vision/stubvision"
	"rooftop-vision/vision"
)

const (
	NameGemini = "gemini"
	NameOpenAI = "openai"
	NameStub   = "stub"
)

// New builds the analyzer selected by cfg.Provider. The API key is taken from
// cfg once, here, and handed to the client.
func New(cfg *config.Config) (vision.Analyzer, error) {
	switch cfg.Provider {
	case NameGemini, "":
		p := gemini.NewProvider(cfg.GeminiBaseURL, cfg.GeminiModel)
		return vision.NewClient(p, cfg.GoogleAPIKey, cfg.RequestTimeout), nil
	case NameOpenAI:
		p := openai.NewProvider(cfg.OpenAIBaseURL, cfg.OpenAIModel)
		return vision.NewClient(p, cfg.OpenAIAPIKey, cfg.RequestTimeout), nil
	case NameStub:
		return stubvision.NewClient(), nil
	default:
		return nil, fmt.Errorf("unknown vision provider %q (want %s, %s or %s)", cfg.Provider, NameGemini, NameOpenAI, NameStub)
	}
}

// APIKeyMissing reports whether the selected provider has no key configured.
func APIKeyMissing(cfg *config.Config) bool {
	switch cfg.Provider {
	case NameGemini, "":
		return cfg.GoogleAPIKey == ""
	case NameOpenAI:
		return cfg.OpenAIAPIKey == ""
	}
	return false
}
