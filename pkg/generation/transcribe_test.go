package generation

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pferrors "github.com/otherjamesbrown/draftgen-cli/pkg/errors"
)

// fakeTranscriber is an OpenAI-compatible transcription endpoint that fails
// the first failures requests with failStatus, then returns text.
type fakeTranscriber struct {
	calls      atomic.Int32
	failures   int32
	failStatus int
	text       string
}

func (f *fakeTranscriber) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := f.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if n <= f.failures {
			w.WriteHeader(f.failStatus)
			fmt.Fprintf(w, `{"error":{"message":"synthetic failure %d","type":"server_error"}}`, n)
			return
		}
		fmt.Fprintf(w, `{"text": %q}`, f.text)
	}
}

func TestTranscribeReturnsText(t *testing.T) {
	svc := &fakeTranscriber{text: "ask my manager for two days of leave next week"}
	server := httptest.NewServer(svc.handler())
	defer server.Close()

	client := newTestClient(t, server.URL, DefaultRetryPolicy())
	text, err := client.Transcribe(context.Background(), []byte("RIFF fake audio"), "request.wav")
	require.NoError(t, err)

	assert.Equal(t, "ask my manager for two days of leave next week", text)
	assert.Equal(t, int32(1), svc.calls.Load())
}

func TestTranscribeRetriesTransientFailures(t *testing.T) {
	svc := &fakeTranscriber{
		failures:   2,
		failStatus: http.StatusServiceUnavailable,
		text:       "follow up with the client on the delayed invoice",
	}
	server := httptest.NewServer(svc.handler())
	defer server.Close()

	retry := RetryPolicy{MaxRetries: 3, BaseBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
	client := newTestClient(t, server.URL, retry)

	text, err := client.Transcribe(context.Background(), []byte("RIFF fake audio"), "request.wav")
	require.NoError(t, err)

	assert.Equal(t, "follow up with the client on the delayed invoice", text)
	assert.Equal(t, int32(3), svc.calls.Load())
}

func TestTranscribeNonTransientFailsImmediately(t *testing.T) {
	svc := &fakeTranscriber{failures: 100, failStatus: http.StatusUnauthorized}
	server := httptest.NewServer(svc.handler())
	defer server.Close()

	client := newTestClient(t, server.URL, DefaultRetryPolicy())
	_, err := client.Transcribe(context.Background(), []byte("RIFF fake audio"), "request.wav")
	require.Error(t, err)

	assert.True(t, pferrors.IsCode(err, pferrors.ErrGenerationUnavailable))
	assert.Equal(t, int32(1), svc.calls.Load(), "auth failures must not consume retry budget")
}

func TestTranscribeExhaustedRetriesFail(t *testing.T) {
	// Unlike generation there is no template to fall back to.
	svc := &fakeTranscriber{failures: 100, failStatus: http.StatusInternalServerError}
	server := httptest.NewServer(svc.handler())
	defer server.Close()

	retry := RetryPolicy{MaxRetries: 1, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
	client := newTestClient(t, server.URL, retry)

	_, err := client.Transcribe(context.Background(), []byte("RIFF fake audio"), "request.wav")
	require.Error(t, err)
	assert.True(t, pferrors.IsCode(err, pferrors.ErrGenerationUnavailable))
	assert.Equal(t, int32(2), svc.calls.Load())
}

func TestTranscribeRejectsEmptyInputs(t *testing.T) {
	svc := &fakeTranscriber{text: "   "}
	server := httptest.NewServer(svc.handler())
	defer server.Close()

	client := newTestClient(t, server.URL, DefaultRetryPolicy())

	_, err := client.Transcribe(context.Background(), nil, "request.wav")
	require.Error(t, err)
	assert.True(t, pferrors.IsCode(err, pferrors.ErrInputRejected))
	assert.Equal(t, int32(0), svc.calls.Load(), "empty audio must not reach the service")

	_, err = client.Transcribe(context.Background(), []byte("RIFF fake audio"), "request.wav")
	require.Error(t, err)
	assert.True(t, pferrors.IsCode(err, pferrors.ErrInputRejected), "whitespace-only transcript is unusable input")
}
