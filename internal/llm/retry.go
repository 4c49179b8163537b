package llm

import (
	"context"
	"errors"
	"log"
	"net"
	"strings"
	"time"
)

const retryBaseDelay = 300 * time.Millisecond

type retryingClient struct {
	Client
	delay time.Duration
}

// WithRetry wraps a client so that transient provider failures are retried once.
func WithRetry(base Client) Client {
	if base == nil {
		return nil
	}
	return &retryingClient{Client: base, delay: retryBaseDelay}
}

func (r *retryingClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	text, err := r.Client.GenerateJSON(ctx, req)
	if err == nil || !shouldRetry(ctx, err) {
		return text, err
	}

	log.Printf("[LLM] retry attempt=1 model=%s error=%v", r.Model(), err)
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return r.Client.GenerateJSON(ctx, req)
}

// shouldRetry reports whether err looks transient. Cancellation of the caller's
// context is never retried.
func shouldRetry(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrEmptyResponse) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"429", "500", "502", "503", "504",
		"rate limit", "resource_exhausted", "unavailable", "overloaded", "server_error",
		"connection reset", "connection refused", "broken pipe", "tls handshake timeout", "eof",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
