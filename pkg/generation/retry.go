package generation

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/openai/openai-go"
)

// RetryPolicy defines retry behavior for generation attempts.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt, so the
	// total attempt count is MaxRetries+1.
	MaxRetries int `yaml:"max_retries"`
	// BaseBackoff is the delay before the first retry; the n-th retry
	// waits BaseBackoff * 2^n.
	BaseBackoff time.Duration `yaml:"base_backoff"`
	// MaxBackoff caps the exponential growth.
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// DefaultRetryPolicy keeps worst-case latency within a user-facing budget:
// sum(attempt timeouts) + sum(backoff delays) stays in the tens of seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:  3,
		BaseBackoff: 500 * time.Millisecond,
		MaxBackoff:  10 * time.Second,
	}
}

// Backoff returns the delay before retry n (zero-based).
func (p RetryPolicy) Backoff(n int) time.Duration {
	d := p.BaseBackoff
	for i := 0; i < n; i++ {
		d *= 2
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// IsTransient reports whether an attempt failure can plausibly self-resolve
// and is therefore worth a retry. Connection failures, timeouts, and
// 408/429/5xx responses are transient; malformed requests and auth failures
// are not, and must never consume retry budget.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 408, apiErr.StatusCode == 429:
			return true
		case apiErr.StatusCode >= 500:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "connection reset") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "eof")
}
