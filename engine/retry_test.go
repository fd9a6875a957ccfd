package engine

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyErrorCategories(t *testing.T) {
	assert.Equal(t, catFatal, classifyError(nil))
	assert.Equal(t, catFatal, classifyError(context.Canceled))
	assert.Equal(t, catRetryable, classifyError(io.ErrUnexpectedEOF))
	assert.Equal(t, catRetryable, classifyError(errors.New("connection reset by peer")))
	assert.Equal(t, catThrottled, classifyError(errors.New("429 too many requests")))
	assert.Equal(t, catFatal, classifyError(errors.New("404 not found")))
}

func TestShouldRetryRespectsMaxRetries(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 2}
	retryableErr := errors.New("connection reset")
	assert.True(t, cfg.shouldRetry(1, retryableErr))
	assert.False(t, cfg.shouldRetry(2, retryableErr))
}

func TestShouldRetryNeverRetriesFatal(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.False(t, cfg.shouldRetry(1, errors.New("404 not found")))
}

func TestWaitReturnsOnContextCancel(t *testing.T) {
	cfg := RetryConfig{BaseDelay: time.Hour, MaxDelay: time.Hour, BackoffFactor: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := cfg.wait(ctx, 1, errors.New("connection reset"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestCalculateBackoffCapsAtMaxDelay(t *testing.T) {
	cfg := RetryConfig{BaseDelay: time.Second, MaxDelay: 2 * time.Second, BackoffFactor: 10, JitterFactor: 0}
	assert.LessOrEqual(t, cfg.calculateBackoff(5), 2*time.Second)
}
