package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimitedClient_DisabledReturnsInner(t *testing.T) {
	inner := &fakeModelClient{answer: "ok"}

	assert.Same(t, inner, NewRateLimitedClient(inner, ProviderOpenAI, 0, 1))
	assert.Same(t, inner, NewRateLimitedClient(inner, ProviderOpenAI, -1, 1))
}

func TestRateLimitedClient_Delegates(t *testing.T) {
	inner := &fakeModelClient{answer: "ok"}
	client := NewRateLimitedClient(inner, ProviderOpenAI, 100, 2)

	for i := 0; i < 2; i++ {
		answer, err := client.Complete(context.Background(), testPrompt())
		require.NoError(t, err)
		assert.Equal(t, "ok", answer)
	}
	assert.Equal(t, 2, inner.calls())
}

func TestRateLimitedClient_HonoursCancellation(t *testing.T) {
	inner := &fakeModelClient{answer: "ok"}
	client := NewRateLimitedClient(inner, ProviderOpenAI, 0.01, 1)

	// First call consumes the only token.
	_, err := client.Complete(context.Background(), testPrompt())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = client.Complete(ctx, testPrompt())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelCall)

	var callErr *ModelCallError
	require.True(t, errors.As(err, &callErr))
	assert.Equal(t, ModelErrTransport, callErr.Kind)
	assert.Equal(t, 1, inner.calls())
}

func TestRateLimitedClient_PassesThroughModelErrors(t *testing.T) {
	callErr := &ModelCallError{Kind: ModelErrEmptyAnswer, Provider: ProviderGemini}
	client := NewRateLimitedClient(&fakeModelClient{err: callErr}, ProviderGemini, 100, 1)

	_, err := client.Complete(context.Background(), testPrompt())
	assert.Same(t, callErr, err)
}
