// Package httprequest calls external HTTP endpoints (webhooks, partner APIs)
// from flows, with optional retry on server errors.
package httprequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kodisha/flowd/pkg/models"
)

const defaultTimeoutSeconds = 30

var (
	ErrURLRequired     = errors.New("httprequest action requires a 'url' parameter")
	ErrHTTPServerError = errors.New("server error during HTTP request")
)

// RetryConfig defines retry behavior for HTTP requests.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

// Handler performs one HTTP request per execution. URL, headers and body
// arrive with templates already resolved.
type Handler struct {
	client *http.Client
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{
		client: &http.Client{Timeout: defaultTimeoutSeconds * time.Second},
		logger: logger.With("module", "httprequest_action"),
	}
}

func (h *Handler) Type() string {
	return "httprequest"
}

func (h *Handler) Execute(ctx context.Context, params map[string]any, _ *models.EventContext) (map[string]any, error) {
	url, _ := params["url"].(string)
	if url == "" {
		return nil, ErrURLRequired
	}

	method, _ := params["method"].(string)
	if method == "" {
		method = http.MethodGet
	}

	method = strings.ToUpper(method)
	retry := parseRetryConfig(params["retry"])

	var (
		lastErr error
		resp    *http.Response
	)

	for attempt := 1; attempt <= retry.Attempts; attempt++ {
		if attempt > 1 {
			h.logger.InfoContext(ctx, "Retrying HTTP request",
				"attempt", attempt,
				"max_attempts", retry.Attempts,
				"url", url)

			select {
			case <-time.After(retry.Delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := h.buildRequest(ctx, method, url, params)
		if err != nil {
			return nil, err
		}

		resp, err = h.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request failed: %w", err)

			continue
		}

		if resp.StatusCode >= 500 && attempt < retry.Attempts {
			_ = resp.Body.Close()

			lastErr = fmt.Errorf("status %d: %w", resp.StatusCode, ErrHTTPServerError)

			continue
		}

		break
	}

	if resp == nil {
		return nil, fmt.Errorf("all retry attempts failed, last error: %w", lastErr)
	}

	return h.processResponse(ctx, resp)
}

func (h *Handler) buildRequest(ctx context.Context, method, url string, params map[string]any) (*http.Request, error) {
	var bodyReader io.Reader = strings.NewReader("")

	if body, exists := params["body"]; exists && body != nil {
		if str, ok := body.(string); ok {
			bodyReader = strings.NewReader(str)
		} else {
			encoded, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal request body: %w", err)
			}

			bodyReader = strings.NewReader(string(encoded))
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}

	if headers, ok := params["headers"].(map[string]any); ok {
		for key, value := range headers {
			if str, ok := value.(string); ok {
				req.Header.Set(key, str)
			}
		}
	}

	return req, nil
}

func (h *Handler) processResponse(ctx context.Context, resp *http.Response) (map[string]any, error) {
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var body any

	err = json.Unmarshal(bodyBytes, &body)
	if err != nil {
		body = string(bodyBytes)
	}

	h.logger.InfoContext(ctx, "HTTP request completed",
		"status", resp.StatusCode,
		"body_length", len(bodyBytes))

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request returned status %d", resp.StatusCode)
	}

	return map[string]any{
		"status_code": resp.StatusCode,
		"body":        body,
	}, nil
}

func parseRetryConfig(retryConfig any) RetryConfig {
	retry := RetryConfig{Attempts: 1, Delay: 0}

	retryMap, ok := retryConfig.(map[string]any)
	if !ok {
		return retry
	}

	if attempts, ok := retryMap["attempts"].(float64); ok && attempts >= 1 {
		retry.Attempts = int(attempts)
	}

	if delay, ok := retryMap["delay"].(float64); ok && delay >= 0 {
		retry.Delay = time.Duration(delay) * time.Second
	}

	return retry
}
