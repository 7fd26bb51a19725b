package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pinger is anything with a cheap liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BufferSizer reports how many operations wait in the offline buffer.
type BufferSizer interface {
	Size() (int, error)
}

// PostgresPinger adapts a pgx pool.
func PostgresPinger(pool *pgxpool.Pool) Pinger {
	if pool == nil {
		return nil
	}
	return pool
}

type redisPinger struct{ client redislib.UniversalClient }

func (r redisPinger) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// RedisPinger adapts a go-redis client.
func RedisPinger(client redislib.UniversalClient) Pinger {
	if client == nil {
		return nil
	}
	return redisPinger{client: client}
}

type Monitor struct {
	pg     Pinger
	redis  Pinger
	buffer BufferSizer

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	onChange func(Status)
	logger   *zap.Logger
}

func New(pg, redis Pinger, buf BufferSizer, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		pg:       pg,
		redis:    redis,
		buffer:   buf,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// OnRefresh registers a callback invoked with every fresh status.
func (m *Monitor) OnRefresh(fn func(Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

func (m *Monitor) Start() {
	go m.loop()
}

// Stop ends the probe loop and waits for it to exit. It must follow Start.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	<-m.done
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.PostgreSQL && m.status.Redis
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh probes every dependency concurrently and stores the result.
func (m *Monitor) Refresh() {
	var (
		pgOK, redisOK bool
		bufferOK      bool
		bufferSize    int
	)
	var g errgroup.Group
	g.Go(func() error {
		pgOK = probe(m.pg, 3*time.Second)
		return nil
	})
	g.Go(func() error {
		redisOK = probe(m.redis, 2*time.Second)
		return nil
	})
	g.Go(func() error {
		bufferOK, bufferSize = m.checkBuffer()
		return nil
	})
	_ = g.Wait()

	status := Status{
		PostgreSQL: pgOK,
		Redis:      redisOK,
		Buffer:     bufferOK,
		BufferSize: bufferSize,
		LastCheck:  time.Now(),
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	onChange := m.onChange
	m.mu.Unlock()

	if previous.PostgreSQL != status.PostgreSQL || previous.Redis != status.Redis {
		m.logger.Info("dependency status changed",
			zap.Bool("postgresql", status.PostgreSQL),
			zap.Bool("redis", status.Redis))
	}
	if onChange != nil {
		onChange(status)
	}
}

func probe(p Pinger, timeout time.Duration) bool {
	if p == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return p.Ping(ctx) == nil
}

func (m *Monitor) checkBuffer() (bool, int) {
	if m.buffer == nil {
		return false, 0
	}
	size, err := m.buffer.Size()
	if err != nil {
		m.logger.Warn("buffer size check failed", zap.Error(err))
		return false, size
	}
	return true, size
}
