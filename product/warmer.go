package product

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/invgo/inventory-service/logger"
)

// Warmer periodically refreshes the analytics aggregate and the default
// low-stock snapshot so the first reader after an invalidation or expiry
// rarely pays the aggregation cost.
type Warmer struct {
	repo      *Repository
	log       *logger.CtxZapLogger
	interval  time.Duration
	threshold int
	scheduler gocron.Scheduler
}

func NewWarmer(repo *Repository, interval time.Duration, threshold int, log *logger.CtxZapLogger) (*Warmer, error) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	if log == nil {
		log = logger.NewNop()
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Warmer{
		repo:      repo,
		log:       log,
		interval:  interval,
		threshold: threshold,
		scheduler: scheduler,
	}, nil
}

// Start registers the refresh job and begins the schedule. The first run
// fires immediately so the cache is warm right after boot.
func (w *Warmer) Start(ctx context.Context) error {
	_, err := w.scheduler.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() { w.refresh(ctx) }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}
	w.scheduler.Start()
	w.log.InfoCtx(ctx, "cache warmer started", zap.Duration("interval", w.interval))
	return nil
}

// Stop shuts the scheduler down, waiting for a running refresh.
func (w *Warmer) Stop() error {
	return w.scheduler.Shutdown()
}

func (w *Warmer) refresh(ctx context.Context) {
	if _, err := w.repo.GetAnalytics(ctx); err != nil {
		w.log.WarnCtx(ctx, "analytics warmup failed", zap.Error(err))
	}
	if _, err := w.repo.GetLowStock(ctx, w.threshold); err != nil {
		w.log.WarnCtx(ctx, "low stock warmup failed", zap.Error(err))
	}
}
