package redis

import (
	"context"

	"github.com/invgo/inventory-service/health"
)

// HealthChecker exposes the manager's liveness probe to the health aggregator.
type HealthChecker struct {
	mgr *Manager
}

// NewHealthChecker wraps the manager.
func NewHealthChecker(mgr *Manager) *HealthChecker {
	return &HealthChecker{mgr: mgr}
}

// Name implements health.Checker.
func (c *HealthChecker) Name() string {
	return "redis"
}

// Check implements health.Checker. An unreachable cache degrades the
// service but never fails it: reads fall through to the relational store.
func (c *HealthChecker) Check(ctx context.Context) health.CheckResult {
	if !c.mgr.IsAlive(ctx) {
		return health.CheckResult{
			Name:    c.Name(),
			Status:  health.StatusUnhealthy,
			Message: "cache store unreachable",
		}
	}
	return health.CheckResult{
		Name:   c.Name(),
		Status: health.StatusHealthy,
	}
}
