package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/veribank/faceauth/internal/domain"
	"github.com/veribank/faceauth/internal/ports"
)

// RetryPolicy bounds transport-level retries. Backoff grows linearly:
// attempt n sleeps Backoff * n before retrying.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Client talks to the face recognition engine over HTTP. Transport
// failures (dial error, timeout, non-2xx) are retried under the policy;
// a decoded response with success=false is a business outcome and is
// returned to the caller without retry.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	retry           RetryPolicy
	defaultTimeout  time.Duration
	livenessTimeout time.Duration
	logger          *slog.Logger
}

// Options configures a Client. Zero values fall back to engine defaults.
type Options struct {
	BaseURL         string
	DefaultTimeout  time.Duration
	LivenessTimeout time.Duration
	Retry           RetryPolicy
	Logger          *slog.Logger
}

// NewClient builds a recognition engine client.
func NewClient(opts Options) *Client {
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = 30 * time.Second
	}
	if opts.LivenessTimeout <= 0 {
		opts.LivenessTimeout = 45 * time.Second
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry.MaxAttempts = 3
	}
	if opts.Retry.Backoff <= 0 {
		opts.Retry.Backoff = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		baseURL:         opts.BaseURL,
		httpClient:      &http.Client{},
		retry:           opts.Retry,
		defaultTimeout:  opts.DefaultTimeout,
		livenessTimeout: opts.LivenessTimeout,
		logger:          opts.Logger,
	}
}

var _ ports.RecognitionEngine = (*Client)(nil)

func (c *Client) DetectFace(ctx context.Context, image string, opts ports.DetectOptions) (ports.DetectResult, error) {
	req := detectRequest{Image: image, Options: detectOptions(opts)}
	var resp detectResponse
	if err := c.invoke(ctx, "detect_face", req, &resp, c.defaultTimeout); err != nil {
		return ports.DetectResult{}, err
	}
	return ports.DetectResult{
		Success:       resp.Success,
		FaceCount:     resp.FaceCount,
		FacesDetected: resp.FacesDetected,
		Confidence:    resp.Confidence,
		Message:       resp.Message,
	}, nil
}

func (c *Client) CheckAntiSpoofing(ctx context.Context, image string, opts ports.AntiSpoofOptions) (ports.AntiSpoofResult, error) {
	req := antiSpoofRequest{Image: image, Options: antiSpoofOptions(opts)}
	var resp antiSpoofResponse
	if err := c.invoke(ctx, "check_anti_spoofing", req, &resp, c.defaultTimeout); err != nil {
		return ports.AntiSpoofResult{}, err
	}
	return ports.AntiSpoofResult{
		Success:    resp.Success,
		IsReal:     resp.IsReal,
		Confidence: resp.Confidence,
		Message:    resp.Message,
	}, nil
}

func (c *Client) CheckLiveness(ctx context.Context, images []string, challengeType string, opts ports.LivenessOptions) (ports.LivenessResult, error) {
	req := livenessRequest{Images: images, ChallengeType: challengeType, Options: livenessOptions(opts)}
	var resp livenessResponse
	if err := c.invoke(ctx, "check_liveness", req, &resp, c.livenessTimeout); err != nil {
		return ports.LivenessResult{}, err
	}
	return ports.LivenessResult{
		Success:        resp.Success,
		LivenessPassed: resp.LivenessPassed,
		Confidence:     resp.Confidence,
		Message:        resp.Message,
	}, nil
}

func (c *Client) GenerateEmbedding(ctx context.Context, image string, opts ports.EmbeddingOptions) (ports.EmbeddingResult, error) {
	req := embeddingRequest{Image: image, Options: modelOptions(opts)}
	var resp embeddingResponse
	if err := c.invoke(ctx, "generate_embedding", req, &resp, c.defaultTimeout); err != nil {
		return ports.EmbeddingResult{}, err
	}
	return ports.EmbeddingResult{
		Success:      resp.Success,
		Embedding:    resp.Embedding,
		Confidence:   resp.Confidence,
		QualityScore: resp.QualityScore,
		Message:      resp.Message,
	}, nil
}

func (c *Client) VerifyFace(ctx context.Context, image string, embeddings [][]float64, threshold float64, opts ports.VerifyOptions) (ports.VerifyResult, error) {
	req := verifyRequest{Image: image, Embeddings: embeddings, Threshold: threshold, Options: modelOptions(opts)}
	var resp verifyResponse
	if err := c.invoke(ctx, "verify_face", req, &resp, c.defaultTimeout); err != nil {
		return ports.VerifyResult{}, err
	}
	return ports.VerifyResult{
		Success:    resp.Success,
		IsMatch:    resp.IsMatch,
		Confidence: resp.Confidence,
		Similarity: resp.Similarity,
		Threshold:  resp.Threshold,
		Message:    resp.Message,
	}, nil
}

func (c *Client) Health(ctx context.Context) (ports.EngineHealth, error) {
	var resp healthResponse
	if err := c.get(ctx, "health", &resp); err != nil {
		return ports.EngineHealth{}, err
	}
	return ports.EngineHealth{
		Status:   resp.Status,
		Services: resp.Services,
		Version:  resp.Version,
	}, nil
}

// invoke POSTs one engine operation, retrying transport failures under
// the policy. Context cancellation aborts the loop immediately.
func (c *Client) invoke(ctx context.Context, operation string, body any, out any, timeout time.Duration) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", operation, err)
		}

		lastErr = c.doOnce(ctx, operation, payload, out, timeout)
		if lastErr == nil {
			return nil
		}
		if attempt == c.retry.MaxAttempts {
			break
		}

		c.logger.WarnContext(ctx, "engine call failed, retrying",
			"module", "engine",
			"layer", "adapter",
			"operation", operation,
			"outcome", "retry",
			"attempt", attempt,
			"error", lastErr.Error(),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", operation, ctx.Err())
		case <-time.After(c.retry.Backoff * time.Duration(attempt)):
		}
	}

	c.logger.ErrorContext(ctx, "engine call exhausted retries",
		"module", "engine",
		"layer", "adapter",
		"operation", operation,
		"outcome", "failure",
		"attempts", c.retry.MaxAttempts,
		"error", lastErr.Error(),
	)
	return fmt.Errorf("%s: %w: %w", operation, domain.ErrEngineUnavailable, lastErr)
}

func (c *Client) doOnce(ctx context.Context, operation string, payload []byte, out any, timeout time.Duration) error {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/"+operation, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("engine returned status %d: %s", resp.StatusCode, string(raw))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, c.defaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, c.baseURL+"/"+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: execute request: %w", domain.ErrEngineUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d: %s", domain.ErrEngineUnavailable, resp.StatusCode, string(raw))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
