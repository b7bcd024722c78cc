package vision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"rooftop-vision/metrics"

	"github.com/apex/log"
)

// DefaultTimeout bounds the single upstream call.
const DefaultTimeout = 30 * time.Second

// Client sends rooftop images to a vision provider and normalizes the reply.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	provider Provider
	apiKey   string
	timeout  time.Duration
	http     *http.Client
}

// NewClient creates a client for provider. An empty apiKey is allowed; every
// call then fails with KindConfigMissing without touching the network.
func NewClient(provider Provider, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		provider: provider,
		apiKey:   apiKey,
		timeout:  timeout,
		http:     &http.Client{Timeout: timeout},
	}
}

// WithTransport replaces the HTTP transport used for upstream calls.
func (c *Client) WithTransport(rt http.RoundTripper) *Client {
	c.http = &http.Client{Timeout: c.timeout, Transport: rt}
	return c
}

// SourceName identifies the provider behind this client.
func (c *Client) SourceName() string {
	return c.provider.SourceName()
}

// AnalyzeRooftop estimates usable roof area and panel count for one image.
// It always returns a Result and never an error; every failure is described
// in the Result itself. Nothing is retried.
func (c *Client) AnalyzeRooftop(ctx context.Context, imageData []byte) (result *Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = unexpected(fmt.Sprint(r))
		}
		elapsed := time.Since(start)
		metrics.ObserveAnalysis(c.provider.SourceName(), result.Outcome(), elapsed)

		entry := log.WithFields(log.Fields{
			"provider":    c.provider.SourceName(),
			"image_bytes": len(imageData),
			"elapsed":     elapsed.String(),
		})
		if result.OK() {
			entry.Info("rooftop analysis succeeded")
		} else {
			entry.WithField("kind", result.Kind).Warnf("rooftop analysis failed: %s", result.Error)
		}
	}()

	return c.analyze(ctx, imageData)
}

func (c *Client) analyze(ctx context.Context, imageData []byte) *Result {
	if c.apiKey == "" {
		res := failure(KindConfigMissing, fmt.Sprintf("%s environment variable not set", c.provider.APIKeyEnv()))
		res.Details = fmt.Sprintf("Please set your %s API key in the environment variables", c.provider.ErrorLabel())
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.provider.NewRequest(ctx, c.apiKey, imageData)
	if err != nil {
		return unexpected(err.Error())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportFailure(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportFailure(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res := failure(KindHTTPStatus, fmt.Sprintf("API returned status code %d", resp.StatusCode))
		res.RawResponse = string(body)
		res.Details = "Check your API key and quota limits"
		return res
	}

	reply, err := c.provider.ReplyText(body)
	if err != nil {
		var apiErr *APIError
		var shapeErr *ShapeError
		switch {
		case errors.As(err, &apiErr):
			res := failure(KindProviderAPI, fmt.Sprintf("%s API Error", c.provider.ErrorLabel()))
			res.Details = apiErr.Message
			res.RawResponse = string(body)
			return res
		case errors.As(err, &shapeErr):
			res := failure(KindInvalidResponseShape, shapeErr.Message)
			res.RawResponse = string(body)
			return res
		default:
			return unexpected(err.Error())
		}
	}

	return ParseReply(reply)
}

func unexpected(details string) *Result {
	res := failure(KindUnexpected, "Unexpected error occurred")
	res.Details = details
	return res
}

func transportFailure(err error) *Result {
	if isTimeout(err) {
		res := failure(KindTimeout, "Request timed out")
		res.Details = "The API request took too long to respond"
		return res
	}
	res := failure(KindNetwork, "Network request failed")
	res.Details = redact(err)
	return res
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// redact drops the request URL from transport errors; it may carry the API key.
func redact(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Sprintf("%s: %v", urlErr.Op, urlErr.Err)
	}
	return err.Error()
}
