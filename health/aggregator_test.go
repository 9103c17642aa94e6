package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubChecker struct {
	name   string
	status Status
}

func (s *stubChecker) Name() string { return s.name }

func (s *stubChecker) Check(ctx context.Context) CheckResult {
	return CheckResult{Name: s.name, Status: s.status}
}

func TestAggregator_AllHealthy(t *testing.T) {
	a := NewAggregator(time.Second)
	a.Register(&stubChecker{name: "database", status: StatusHealthy})
	a.Register(&stubChecker{name: "redis", status: StatusHealthy})

	resp := a.Check(context.Background())

	assert.Equal(t, StatusHealthy, resp.Status)
	assert.True(t, resp.IsHealthy())
	assert.Len(t, resp.Checks, 2)
}

func TestAggregator_PartialFailureIsDegraded(t *testing.T) {
	a := NewAggregator(time.Second)
	a.Register(&stubChecker{name: "database", status: StatusHealthy})
	a.Register(&stubChecker{name: "redis", status: StatusUnhealthy})

	resp := a.Check(context.Background())

	assert.Equal(t, StatusDegraded, resp.Status)
	assert.False(t, resp.IsHealthy())
}

func TestAggregator_TotalFailureIsUnhealthy(t *testing.T) {
	a := NewAggregator(time.Second)
	a.Register(&stubChecker{name: "database", status: StatusUnhealthy})
	a.Register(&stubChecker{name: "redis", status: StatusUnhealthy})

	resp := a.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestAggregator_NoCheckers(t *testing.T) {
	a := NewAggregator(0)
	resp := a.Check(context.Background())
	assert.Equal(t, StatusHealthy, resp.Status)
}
