package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pferrors "github.com/otherjamesbrown/draftgen-cli/pkg/errors"
	"github.com/otherjamesbrown/draftgen-cli/pkg/logging"
)

const testCompletion = `{"subject": "Leave request", "greeting": "Dear Manager,", "body": "I would like to request leave next week.", "closing": "Best regards,"}`

// fakeService is an OpenAI-compatible chat-completions endpoint that fails
// the first failures requests with failStatus, then succeeds.
type fakeService struct {
	calls      atomic.Int32
	failures   int32
	failStatus int
}

func (f *fakeService) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := f.calls.Add(1)
		if n <= f.failures {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.failStatus)
			fmt.Fprintf(w, `{"error":{"message":"synthetic failure %d","type":"server_error"}}`, n)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "llama-3.1-8b-instant",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": testCompletion},
					"finish_reason": "stop",
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func newTestClient(t *testing.T, serverURL string, retry RetryPolicy) *Client {
	t.Helper()
	return NewClient(Config{
		BaseURL:        serverURL,
		APIKey:         "test-key",
		Model:          "llama-3.1-8b-instant",
		AttemptTimeout: 5 * time.Second,
		Retry:          retry,
	}, WithLogger(logging.NewNopLogger()))
}

func TestGenerateFirstAttemptSuccess(t *testing.T) {
	svc := &fakeService{}
	server := httptest.NewServer(svc.handler())
	defer server.Close()

	client := newTestClient(t, server.URL, DefaultRetryPolicy())
	out, err := client.Generate(context.Background(), "write the email", "corporate")
	require.NoError(t, err)

	assert.Equal(t, SourceGenerated, out.Source)
	assert.Equal(t, testCompletion, out.Content)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, int32(1), svc.calls.Load())
}

func TestGenerateRetriesTransientFailures(t *testing.T) {
	svc := &fakeService{failures: 2, failStatus: http.StatusInternalServerError}
	server := httptest.NewServer(svc.handler())
	defer server.Close()

	retry := RetryPolicy{MaxRetries: 3, BaseBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
	client := newTestClient(t, server.URL, retry)

	out, err := client.Generate(context.Background(), "write the email", "corporate")
	require.NoError(t, err)

	assert.Equal(t, SourceGenerated, out.Source)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, int32(3), svc.calls.Load())
}

func TestGenerateFallsBackAfterRetryExhaustion(t *testing.T) {
	svc := &fakeService{failures: 100, failStatus: http.StatusServiceUnavailable}
	server := httptest.NewServer(svc.handler())
	defer server.Close()

	retry := RetryPolicy{MaxRetries: 2, BaseBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
	client := newTestClient(t, server.URL, retry)

	out, err := client.Generate(context.Background(), "write the email", "education")
	require.NoError(t, err)

	// MaxRetries retries after the first attempt, then fallback.
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, int32(3), svc.calls.Load())
	assert.Equal(t, SourceFallback, out.Source)

	expected, ok := FallbackContent("education")
	require.True(t, ok)
	assert.Equal(t, expected, out.Content)
}

func TestGenerateNonTransientFailsImmediately(t *testing.T) {
	svc := &fakeService{failures: 100, failStatus: http.StatusUnauthorized}
	server := httptest.NewServer(svc.handler())
	defer server.Close()

	client := newTestClient(t, server.URL, DefaultRetryPolicy())
	_, err := client.Generate(context.Background(), "write the email", "corporate")
	require.Error(t, err)

	assert.True(t, pferrors.IsCode(err, pferrors.ErrGenerationUnavailable))
	assert.Equal(t, int32(1), svc.calls.Load(), "auth failures must not consume retry budget")
}

func TestGenerateDeadlineShortCircuitsToFallback(t *testing.T) {
	svc := &fakeService{failures: 100, failStatus: http.StatusInternalServerError}
	server := httptest.NewServer(svc.handler())
	defer server.Close()

	// The remaining deadline cannot fit backoff plus another full attempt,
	// so the client must stop retrying rather than blow the budget.
	client := NewClient(Config{
		BaseURL:        server.URL,
		APIKey:         "test-key",
		Model:          "llama-3.1-8b-instant",
		AttemptTimeout: 10 * time.Second,
		Retry:          RetryPolicy{MaxRetries: 5, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
	}, WithLogger(logging.NewNopLogger()))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	out, err := client.Generate(ctx, "write the email", "hr")
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, out.Source)
	assert.Equal(t, int32(1), svc.calls.Load())
}

func TestGenerateUnknownDomainStillFallsBack(t *testing.T) {
	svc := &fakeService{failures: 100, failStatus: http.StatusInternalServerError}
	server := httptest.NewServer(svc.handler())
	defer server.Close()

	retry := RetryPolicy{MaxRetries: 0, BaseBackoff: time.Millisecond}
	client := newTestClient(t, server.URL, retry)

	out, err := client.Generate(context.Background(), "write the email", "not-a-domain")
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, out.Source)

	general, ok := FallbackContent("general")
	require.True(t, ok)
	assert.Equal(t, general, out.Content)
}
