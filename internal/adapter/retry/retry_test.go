package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/config"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

var testCfg = config.Config{AppEnv: "test"}

func TestNewExponential_TestEnv(t *testing.T) {
	t.Parallel()
	expo := NewExponential(testCfg)
	assert.Equal(t, 10*time.Millisecond, expo.InitialInterval)
	assert.Equal(t, 2*time.Second, expo.MaxElapsedTime)
}

func TestClassify(t *testing.T) {
	t.Parallel()
	base := errors.New("upstream")

	rl := Classify(http.StatusTooManyRequests, base)
	assert.ErrorIs(t, rl, domain.ErrUpstreamRateLimit)
	assert.ErrorIs(t, rl, base)
	var perm *backoff.PermanentError
	assert.False(t, errors.As(rl, &perm))

	assert.False(t, errors.As(Classify(http.StatusBadGateway, base), &perm))
	assert.True(t, errors.As(Classify(http.StatusBadRequest, base), &perm))
	assert.True(t, errors.As(Classify(0, base), &perm))
}

func TestDo(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), testCfg, func() error {
		calls++
		if calls < 3 {
			return Classify(http.StatusServiceUnavailable, errors.New("busy"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = Do(context.Background(), testCfg, func() error {
		calls++
		return Classify(http.StatusUnauthorized, errors.New("denied"))
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.EqualError(t, err, "denied")
}

func TestDo_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, testCfg, func() error { return Classify(http.StatusTooManyRequests, errors.New("slow down")) })
	require.Error(t, err)
}
