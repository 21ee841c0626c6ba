// Package retry holds the upstream retry policy shared by the record store
// and model adapters: 429 and 5xx are retried with exponential backoff,
// everything else fails immediately.
package retry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cenkalti/backoff/v4"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/config"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

// NewExponential builds the backoff policy from cfg.
func NewExponential(cfg config.Config) *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsed, initial, maxInterval, multiplier := cfg.GetBackoffConfig()
	expo.MaxElapsedTime = maxElapsed
	expo.InitialInterval = initial
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

// Classify wraps err according to the HTTP status that produced it. A zero
// status means no response was received.
func Classify(status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", domain.ErrUpstreamRateLimit, err)
	case status >= 500:
		return err
	default:
		return backoff.Permanent(err)
	}
}

// Do runs op until it succeeds, returns a permanent error, the policy gives
// up, or ctx is done.
func Do(ctx context.Context, cfg config.Config, op func() error) error {
	return backoff.Retry(op, backoff.WithContext(NewExponential(cfg), ctx))
}
