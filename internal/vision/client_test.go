package vision

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkalin/phototag-go/internal/conf"
	"github.com/tkalin/phototag-go/internal/errors"
)

const testEndpoint = "https://vision.example.test/v1/images:annotate"

func newTestClient(t *testing.T) *Client {
	t.Helper()

	c := NewClient(&conf.VisionSettings{
		Endpoint:   testEndpoint,
		APIKey:     "test-key",
		MaxResults: 10,
		Timeout:    5 * time.Second,
	})

	httpmock.ActivateNonDefault(c.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func annotateSuccessResponse() map[string]any {
	return map[string]any{
		"responses": []map[string]any{{
			"labelAnnotations": []map[string]any{
				{"mid": "/m/04ls8", "description": "Missile", "score": 0.92},
				{"description": "Vehicle", "score": 0.81},
			},
			"localizedObjectAnnotations": []map[string]any{
				{"name": "Truck", "score": 0.7},
			},
			"textAnnotations": []map[string]any{
				{"description": "TEL-42 IRGC"},
				{"description": "TEL-42"},
				{"description": "IRGC"},
			},
			"webDetection": map[string]any{
				"bestGuessLabels": []map[string]any{
					{"label": "iranian missile launcher"},
				},
			},
		}},
	}
}

func registerAnnotateResponder(t *testing.T, status int, body any) {
	t.Helper()
	responder, err := httpmock.NewJsonResponder(status, body)
	require.NoError(t, err)
	httpmock.RegisterResponder(http.MethodPost, testEndpoint, responder)
}

func TestAnalyzeSuccess(t *testing.T) {
	c := newTestClient(t)
	registerAnnotateResponder(t, http.StatusOK, annotateSuccessResponse())

	sig, err := c.Analyze(context.Background(), "img1.jpg", []byte("jpegdata"))
	require.NoError(t, err)

	require.Len(t, sig.Labels, 2)
	assert.Equal(t, "Missile", sig.Labels[0].Text)
	assert.InDelta(t, 0.92, sig.Labels[0].Confidence, 1e-9)
	assert.Equal(t, []string{"Truck"}, sig.Objects)
	assert.Equal(t, []string{"TEL-42", "IRGC"}, sig.TextTokens)
	assert.Equal(t, []string{"iranian missile launcher"}, sig.WebHints)
}

func TestAnnotateCachesResponses(t *testing.T) {
	c := newTestClient(t)
	registerAnnotateResponder(t, http.StatusOK, annotateSuccessResponse())

	_, err := c.Annotate(context.Background(), "img1.jpg", []byte("jpegdata"))
	require.NoError(t, err)
	_, err = c.Annotate(context.Background(), "img1.jpg", []byte("jpegdata"))
	require.NoError(t, err)

	assert.Equal(t, 1, httpmock.GetTotalCallCount())

	// A different identifier is a fresh remote call.
	_, err = c.Annotate(context.Background(), "img2.jpg", []byte("jpegdata"))
	require.NoError(t, err)
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestAnnotateNoAPIKey(t *testing.T) {
	c := NewClient(&conf.VisionSettings{Endpoint: testEndpoint})

	_, err := c.Annotate(context.Background(), "img1.jpg", []byte("jpegdata"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	assert.False(t, errors.IsTransient(err))
}

func TestAnnotateStatusCodeTaxonomy(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{"quota exceeded", http.StatusTooManyRequests, true},
		{"server error", http.StatusInternalServerError, true},
		{"bad gateway", http.StatusBadGateway, true},
		{"forbidden", http.StatusForbidden, false},
		{"bad request", http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t)
			registerAnnotateResponder(t, tt.status, map[string]any{})

			_, err := c.Annotate(context.Background(), "img1.jpg", []byte("jpegdata"))
			require.Error(t, err)
			assert.Equal(t, tt.transient, errors.IsTransient(err))
		})
	}
}

func TestAnnotateServiceErrorPayload(t *testing.T) {
	c := newTestClient(t)
	registerAnnotateResponder(t, http.StatusOK, map[string]any{
		"responses": []map[string]any{{
			"error": map[string]any{"code": 8, "message": "RESOURCE_EXHAUSTED"},
		}},
	})

	_, err := c.Annotate(context.Background(), "img1.jpg", []byte("jpegdata"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryRateLimit))
	assert.True(t, errors.IsTransient(err))
}

func TestAnnotatePermanentServiceError(t *testing.T) {
	c := newTestClient(t)
	registerAnnotateResponder(t, http.StatusOK, map[string]any{
		"responses": []map[string]any{{
			"error": map[string]any{"code": 3, "message": "Bad image data"},
		}},
	})

	_, err := c.Annotate(context.Background(), "img1.jpg", []byte("jpegdata"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryVisionAPI))
	assert.False(t, errors.IsTransient(err))
}

func TestAnnotateEmptyResponse(t *testing.T) {
	c := newTestClient(t)
	registerAnnotateResponder(t, http.StatusOK, map[string]any{"responses": []map[string]any{}})

	_, err := c.Annotate(context.Background(), "img1.jpg", []byte("jpegdata"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryVisionAPI))
}

func TestAnnotateCancelledContext(t *testing.T) {
	c := newTestClient(t)
	registerAnnotateResponder(t, http.StatusOK, annotateSuccessResponse())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Annotate(ctx, "img1.jpg", []byte("jpegdata"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryCancellation))
}
