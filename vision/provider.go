package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Provider encodes a rooftop image into a provider specific HTTP request and
// decodes the provider's response envelope back into the model's reply text.
// Implementations must be safe for concurrent use.
type Provider interface {
	// SourceName is a short label for logs and metrics, e.g. "Gemini".
	SourceName() string
	// APIKeyEnv names the environment variable that holds the provider key.
	APIKeyEnv() string
	// ErrorLabel prefixes provider-side error messages, e.g. "Google".
	ErrorLabel() string
	// NewRequest builds the POST request carrying the image and Prompt.
	NewRequest(ctx context.Context, apiKey string, imageData []byte) (*http.Request, error)
	// ReplyText extracts the reply from a 2xx response body. It returns an
	// *APIError when the envelope reports an error and a *ShapeError when
	// the expected fields are missing.
	ReplyText(body []byte) (string, error)
}

// Analyzer is anything that can turn a rooftop image into a Result.
type Analyzer interface {
	AnalyzeRooftop(ctx context.Context, imageData []byte) *Result
	SourceName() string
}

// APIError is an error reported inside a provider's response envelope.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider error: %s", e.Message)
}

// EnvelopeError builds an APIError from the raw "error" member of a
// response envelope, or returns nil when the member is absent or null. Both
// supported providers put a "message" string in there.
func EnvelopeError(raw json.RawMessage) *APIError {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
		return &APIError{Message: "Unknown API error"}
	}
	return &APIError{Message: body.Message}
}

// ShapeError means a response envelope lacked the fields holding the reply.
type ShapeError struct {
	Message string
}

func (e *ShapeError) Error() string {
	return e.Message
}

const msgInvalidStructure = "Invalid response structure from API"

// ErrInvalidStructure returns the generic ShapeError.
func ErrInvalidStructure() *ShapeError {
	return &ShapeError{Message: msgInvalidStructure}
}
