package middleware

import (
	"github.com/turboprint/turboprint/core"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware vetoes records beyond a sustained rate. Rejected
// records return core.ErrRejected, which stops the pipeline without
// counting as a failure.
type RateLimitMiddleware struct {
	priority int
	limiter  *rate.Limiter
}

// NewRateLimitMiddleware allows perSecond records sustained with the
// given burst.
func NewRateLimitMiddleware(priority int, perSecond float64, burst int) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		priority: priority,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Priority implements Inner.
func (m *RateLimitMiddleware) Priority() int { return m.priority }

// Handle admits the record when a token is available.
func (m *RateLimitMiddleware) Handle(rec *core.Record) (*core.Record, error) {
	if !m.limiter.Allow() {
		return nil, core.ErrRejected
	}
	return rec, nil
}
