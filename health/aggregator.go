package health

import (
	"context"
	"sync"
	"time"
)

// Aggregator runs every registered checker and folds the results into one
// report. The service is degraded when some checks fail, unhealthy when all do.
type Aggregator struct {
	checkers []Checker
	timeout  time.Duration
	mu       sync.RWMutex
}

// NewAggregator creates an aggregator. timeout bounds one whole Check pass.
func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Aggregator{timeout: timeout}
}

// Register adds a checker.
func (a *Aggregator) Register(checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkers = append(a.checkers, checker)
}

// Check runs all probes sequentially and aggregates their status.
func (a *Aggregator) Check(ctx context.Context) *Response {
	start := time.Now()
	checkCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.mu.RLock()
	checkers := make([]Checker, len(a.checkers))
	copy(checkers, a.checkers)
	a.mu.RUnlock()

	resp := &Response{
		Timestamp: start,
		Checks:    make(map[string]CheckResult, len(checkers)),
	}

	healthy := 0
	for _, c := range checkers {
		probeStart := time.Now()
		result := c.Check(checkCtx)
		result.Timestamp = probeStart
		result.Duration = time.Since(probeStart)
		resp.Checks[c.Name()] = result
		if result.Status == StatusHealthy {
			healthy++
		}
	}

	switch {
	case len(checkers) == 0 || healthy == len(checkers):
		resp.Status = StatusHealthy
	case healthy == 0:
		resp.Status = StatusUnhealthy
	default:
		resp.Status = StatusDegraded
	}
	resp.Duration = time.Since(start)
	return resp
}
