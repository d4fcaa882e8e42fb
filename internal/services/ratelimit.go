package services

import (
	"context"

	"golang.org/x/time/rate"
)

// rateLimitedClient is a ModelClient decorator that waits for a token before
// delegating to the wrapped client.
type rateLimitedClient struct {
	inner    ModelClient
	limiter  *rate.Limiter
	provider string
}

// NewRateLimitedClient wraps inner with a token bucket of rps requests per second.
// A non-positive rps disables limiting and returns inner unchanged.
func NewRateLimitedClient(inner ModelClient, provider string, rps float64, burst int) ModelClient {
	if rps <= 0 {
		return inner
	}
	if burst < 1 {
		burst = 1
	}

	return &rateLimitedClient{
		inner:    inner,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		provider: provider,
	}
}

// Complete implements ModelClient.
func (c *rateLimitedClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &ModelCallError{Kind: ModelErrTransport, Provider: c.provider, Err: err}
	}
	return c.inner.Complete(ctx, prompt)
}
