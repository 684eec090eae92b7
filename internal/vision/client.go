// Package vision implements the client for the remote detection service and
// the signal normalization consumed by the classification engine.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/tkalin/phototag-go/internal/conf"
	"github.com/tkalin/phototag-go/internal/errors"
	"github.com/tkalin/phototag-go/internal/logging"
)

const (
	defaultUserAgent = "phototag-go"

	// cacheCleanupInterval controls how often expired annotate responses are
	// purged from the in-process cache.
	cacheCleanupInterval = 10 * time.Minute
)

// Client calls the remote annotate endpoint. It enforces a minimum delay
// between consecutive calls and caches raw responses per identifier so that a
// dry-run followed by a committed pass does not re-bill the same image.
//
// Thread-safe for concurrent use, although the orchestrator is sequential.
type Client struct {
	endpoint   string
	apiKey     string
	maxResults int
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *gocache.Cache
	log        *slog.Logger
}

// NewClient creates a detection service client from settings.
func NewClient(settings *conf.VisionSettings) *Client {
	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// A rate limit of zero disables the minimum delay.
	limit := rate.Inf
	if settings.RateLimit > 0 {
		limit = rate.Every(settings.RateLimit)
	}

	ttl := settings.CacheTTL
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}

	return &Client{
		endpoint:   settings.Endpoint,
		apiKey:     settings.APIKey,
		maxResults: settings.MaxResults,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		cache:      gocache.New(ttl, cacheCleanupInterval),
		log:        logging.ForService("vision"),
	}
}

// Analyze implements SignalSource: it annotates the image and returns the
// normalized detection signal.
func (c *Client) Analyze(ctx context.Context, identifier string, image []byte) (Signal, error) {
	resp, err := c.Annotate(ctx, identifier, image)
	if err != nil {
		return Signal{}, err
	}
	return Normalize(resp), nil
}

// Annotate sends the image to the detection service and returns the raw
// per-image response. Cached responses are returned without a remote call.
func (c *Client) Annotate(ctx context.Context, identifier string, image []byte) (*ImageResponse, error) {
	if cached, found := c.cache.Get(identifier); found {
		if resp, ok := cached.(*ImageResponse); ok {
			return resp, nil
		}
	}

	if c.apiKey == "" {
		return nil, errors.Newf("vision API key is not configured").
			Component("vision").
			Category(errors.CategoryConfiguration).
			Build()
	}

	// Minimum delay between consecutive remote calls, independent of the
	// orchestrator's batch boundaries.
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.New(err).
			Component("vision").
			Category(errors.CategoryCancellation).
			Build()
	}

	body, err := c.buildRequestBody(image)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.post(ctx, body)
	if err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, c.wrapServiceError(identifier, resp.Error)
	}

	if c.log != nil {
		c.log.Debug("annotate completed",
			"identifier", identifier,
			"labels", len(resp.LabelAnnotations),
			"objects", len(resp.LocalizedObjectAnnotations),
			"duration_ms", time.Since(start).Milliseconds())
	}

	c.cache.SetDefault(identifier, resp)
	return resp, nil
}

func (c *Client) buildRequestBody(image []byte) ([]byte, error) {
	req := annotateRequest{
		Requests: []imageRequest{{
			Image: imageContent{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []feature{
				{Type: featureLabelDetection, MaxResults: c.maxResults},
				{Type: featureObjectLocalization, MaxResults: c.maxResults},
				{Type: featureTextDetection, MaxResults: c.maxResults},
				{Type: featureWebDetection, MaxResults: 20},
				{Type: featureImageProperties, MaxResults: 1},
			},
		}},
	}

	body, err := json.Marshal(&req)
	if err != nil {
		return nil, errors.New(fmt.Errorf("encoding annotate request: %w", err)).
			Component("vision").
			Category(errors.CategoryVisionAPI).
			Build()
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, body []byte) (*ImageResponse, error) {
	url := fmt.Sprintf("%s?key=%s", c.endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.New(err).Component("vision").Category(errors.CategoryVisionAPI).Build()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		category := errors.CategoryNetwork
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			category = errors.CategoryTimeout
		}
		if ctx.Err() != nil {
			category = errors.CategoryCancellation
		}
		return nil, errors.New(fmt.Errorf("annotate request failed: %w", err)).
			Component("vision").
			Category(category).
			Build()
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode != http.StatusOK {
		return nil, c.wrapHTTPError(httpResp.StatusCode)
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.New(fmt.Errorf("reading annotate response: %w", err)).
			Component("vision").
			Category(errors.CategoryNetwork).
			Build()
	}

	var batch annotateResponse
	if err := json.Unmarshal(respBody, &batch); err != nil {
		return nil, errors.New(fmt.Errorf("decoding annotate response: %w", err)).
			Component("vision").
			Category(errors.CategoryVisionAPI).
			Build()
	}
	if len(batch.Responses) == 0 {
		return nil, errors.Newf("annotate response contained no results").
			Component("vision").
			Category(errors.CategoryVisionAPI).
			Build()
	}
	return &batch.Responses[0], nil
}

// wrapHTTPError maps transport-level status codes onto the retry taxonomy:
// quota and server-side failures are transient, everything else permanent.
func (c *Client) wrapHTTPError(status int) error {
	category := errors.CategoryVisionAPI
	switch {
	case status == http.StatusTooManyRequests:
		category = errors.CategoryRateLimit
	case status >= 500:
		category = errors.CategoryNetwork
	}
	return errors.Newf("annotate returned status %d", status).
		Component("vision").
		Category(category).
		Context("status_code", status).
		Build()
}

// wrapServiceError maps the per-image error payload. Code 8 is
// RESOURCE_EXHAUSTED (transient); malformed or unreadable images are permanent.
func (c *Client) wrapServiceError(identifier string, status *Status) error {
	category := errors.CategoryVisionAPI
	if status.Code == 8 {
		category = errors.CategoryRateLimit
	}
	return errors.Newf("annotate failed for %s: %s", identifier, status.Message).
		Component("vision").
		Category(category).
		Context("service_code", status.Code).
		Build()
}
