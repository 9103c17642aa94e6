package database

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
	return "database"
}

// Check implements health.Checker. A dead handle is reported, never thrown;
// the manager has already cleared it so the next acquire redials.
func (c *HealthChecker) Check(ctx context.Context) health.CheckResult {
	if !c.mgr.IsAlive(ctx) {
		return health.CheckResult{
			Name:    c.Name(),
			Status:  health.StatusUnhealthy,
			Message: "relational store unreachable",
		}
	}
	return health.CheckResult{
		Name:   c.Name(),
		Status: health.StatusHealthy,
	}
}
