package app

import (
	"context"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/httpserver"
)

// Pinger is anything with a context-aware Ping: pgx pools, the tracker and
// the queue producer.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency names a Pinger probed by /readyz.
type Dependency struct {
	Name   string
	Pinger Pinger
}

// BuildReadinessChecks returns one check per dependency in order, skipping
// dependencies without a Pinger.
func BuildReadinessChecks(deps ...Dependency) []httpserver.ReadyCheck {
	checks := make([]httpserver.ReadyCheck, 0, len(deps))
	for _, d := range deps {
		if d.Pinger == nil {
			continue
		}
		checks = append(checks, httpserver.ReadyCheck{Name: d.Name, Check: d.Pinger.Ping})
	}
	return checks
}
