// Package gemini opens streaming generation requests against the Generative
// Language API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// genericFailure is reported when a failed response carries no message.
const genericFailure = "API request failed"

// ErrMissingAPIKey is returned by NewClient when no usable key is configured.
var ErrMissingAPIKey = errors.New("missing API key: set GEMINI_API_KEY or api_key in the config file")

// RequestError is a non-2xx response from the API.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Config describes the model endpoint and generation settings.
type Config struct {
	APIKey          string
	Model           string
	Endpoint        string
	Temperature     float64
	MaxOutputTokens int
	// Timeout bounds the whole request including reading the stream. Zero
	// means no limit beyond the caller's context.
	Timeout time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient validates cfg and returns a client. httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" || key == "YOUR_API_KEY" {
		return nil, ErrMissingAPIKey
	}
	cfg.APIKey = key
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: httpClient}, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

// StreamGenerate posts prompt and returns the response body once the server
// has accepted the request. The caller reads it sequentially and must close
// it. A non-2xx status is returned as *RequestError.
func (c *Client) StreamGenerate(ctx context.Context, prompt string) (io.ReadCloser, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.cfg.Temperature,
			MaxOutputTokens: c.cfg.MaxOutputTokens,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.streamURL(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// The key stays out of the URL, which net/http repeats in transport errors.
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	return resp.Body, nil
}

func (c *Client) streamURL() string {
	return fmt.Sprintf("%s/models/%s:streamGenerateContent",
		strings.TrimRight(c.cfg.Endpoint, "/"),
		url.PathEscape(c.cfg.Model))
}

// errorMessage pulls error.message out of an error body.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return genericFailure
	}
	msg := gjson.GetBytes(body, "error.message")
	if msg.Type != gjson.String || msg.Str == "" {
		return genericFailure
	}
	return msg.Str
}
