package perception

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/agentrelay/logging"
)

// ErrNoEndpoint is returned by NewHTTPDetector when no endpoint is configured.
var ErrNoEndpoint = errors.New("detector endpoint is required")

// HTTPOptions configures an HTTPDetector.
type HTTPOptions struct {
	// HTTPClient overrides the client; Timeout is ignored when set.
	HTTPClient *http.Client
	Timeout    time.Duration
	// RateLimit caps detection requests per second; zero disables limiting.
	RateLimit float64
	Burst     int
	Logger    logging.Logger
}

// HTTPDetector calls a detection service over HTTP. The service receives
// {"image": "<path or url>"} or {"image_data": "<base64>"} and answers with
// {"labels": ["cup", "keys"]}.
type HTTPDetector struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	logger   logging.Logger
}

// NewHTTPDetector creates a detector posting to endpoint.
func NewHTTPDetector(endpoint string, optFns ...func(o *HTTPOptions)) (*HTTPDetector, error) {
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	opts := HTTPOptions{
		Timeout: 10 * time.Second,
		Burst:   1,
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return &HTTPDetector{endpoint: endpoint, client: client, limiter: limiter, logger: opts.Logger}, nil
}

type detectRequest struct {
	Image     string `json:"image,omitempty"`
	ImageData string `json:"image_data,omitempty"`
}

type detectResponse struct {
	Labels []string `json:"labels"`
}

// Detect implements Detector.
func (d *HTTPDetector) Detect(ctx context.Context, image string) ([]string, error) {
	return d.post(ctx, detectRequest{Image: image})
}

// DetectImage implements ImageDetector.
func (d *HTTPDetector) DetectImage(ctx context.Context, data []byte) ([]string, error) {
	return d.post(ctx, detectRequest{ImageData: base64.StdEncoding.EncodeToString(data)})
}

func (d *HTTPDetector) post(ctx context.Context, payload detectRequest) ([]string, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("detector rate limit: %w", err)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode detect request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build detect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("perception.detect.failed", "endpoint", d.endpoint, "error", err)
		return nil, fmt.Errorf("detect request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		d.logger.Warn("perception.detect.status", "endpoint", d.endpoint, "status", resp.StatusCode)
		return nil, fmt.Errorf("detector returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode detect response: %w", err)
	}
	d.logger.Debug("perception.detect", "labels", len(out.Labels), "duration_ms", time.Since(start).Milliseconds())
	return out.Labels, nil
}
