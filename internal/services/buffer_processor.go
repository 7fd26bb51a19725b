package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/internal/infrastructure/buffer"
	"github.com/fastygo/storefront/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// PendingStore is the persistence the processor drains.
type PendingStore interface {
	Add(p buffer.Pending) error
	Peek(limit int) ([]buffer.Pending, error)
	Remove(p buffer.Pending) error
	Retry(p buffer.Pending) error
	Size() (int, error)
	Cleanup(olderThan time.Time) error
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// BufferProcessor replays buffered product writes into Postgres.
type BufferProcessor struct {
	store    PendingStore
	monitor  ConnectionHealth
	products repository.ProductRepository
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      ProcessorConfig
	onSize   func(int)
}

func NewBufferProcessor(
	store PendingStore,
	monitor ConnectionHealth,
	products repository.ProductRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval < time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:    store,
		monitor:  monitor,
		products: products,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = bp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := bp.Drain(ctx); err != nil {
			bp.logger.Error("buffer drain failed", zap.Error(err))
		}
	})
	_, _ = bp.cron.AddFunc("@hourly", func() {
		if err := bp.store.Cleanup(time.Now().Add(-bp.cfg.Retention)); err != nil {
			bp.logger.Warn("buffer cleanup failed", zap.Error(err))
		}
	})

	return bp
}

// OnSizeChange registers a callback fed with the buffer size after each drain.
func (bp *BufferProcessor) OnSizeChange(fn func(int)) {
	bp.onSize = fn
}

// Start launches the cron scheduler.
func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started")
}

// Stop gracefully stops the scheduler.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

// Drain replays queued products synchronously.
func (bp *BufferProcessor) Drain(ctx context.Context) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return nil
	}

	items, err := bp.store.Peek(bp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, p := range items {
		if err := bp.apply(ctx, p); err != nil {
			bp.logger.Error("failed to replay buffered product",
				zap.String("product_id", p.Product.ID),
				zap.String("operation", p.Operation),
				zap.Error(err))

			p.Attempts++
			if p.Attempts >= bp.cfg.MaxRetries || isPermanent(err) {
				bp.logger.Warn("dropping buffered product", zap.String("product_id", p.Product.ID), zap.Int("attempts", p.Attempts))
				_ = bp.store.Remove(p)
				continue
			}
			if err := bp.store.Retry(p); err != nil {
				bp.logger.Error("failed to requeue buffered product", zap.Error(err))
			}
			continue
		}

		if err := bp.store.Remove(p); err != nil {
			bp.logger.Warn("failed to purge replayed product", zap.Error(err))
		}
	}

	if bp.onSize != nil {
		bp.onSize(bp.Size())
	}
	return nil
}

// BufferOperation attempts the write immediately and falls back to queueing it.
func (bp *BufferProcessor) BufferOperation(ctx context.Context, p buffer.Pending) error {
	if bp == nil || bp.store == nil {
		return errors.New("buffer processor not configured")
	}

	if bp.monitor == nil || bp.monitor.IsOnline() {
		err := bp.apply(ctx, p)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return err
		}
		bp.logger.Warn("immediate processing failed, buffering", zap.Error(err))
	}
	if err := bp.store.Add(p); err != nil {
		return err
	}
	if bp.onSize != nil {
		bp.onSize(bp.Size())
	}
	return nil
}

// Size returns the number of buffered items.
func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) apply(ctx context.Context, p buffer.Pending) error {
	if ctx == nil {
		ctx = context.Background()
	}
	switch p.Operation {
	case buffer.OperationCreate:
		product := p.Product
		_, err := bp.products.Create(ctx, &product)
		return err
	default:
		return domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("unsupported product operation %q", p.Operation))
	}
}

// isPermanent reports errors that will not go away by retrying.
func isPermanent(err error) bool {
	var dErr *domain.Error
	return errors.As(err, &dErr)
}
