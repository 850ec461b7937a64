package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mkraev/ranked-search-platform/pkg/kafka"
)

// Collector buffers search events and flushes them to Kafka in batches,
// either when the buffer fills or on a timer. Track never blocks the
// request path: when the buffer is full the event is dropped and
// counted.
type Collector struct {
	producer      *kafka.Producer
	mu            sync.Mutex
	buffer        []kafka.Event
	dropped       int64
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger
	done          chan struct{}
	closeOnce     sync.Once
}

// NewCollector creates a Collector flushing at batchSize events or
// every flushInterval, whichever comes first.
func NewCollector(producer *kafka.Producer, batchSize int, flushInterval time.Duration) *Collector {
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	return &Collector{
		producer:      producer,
		buffer:        make([]kafka.Event, 0, batchSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Start launches the periodic flush loop.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.flush(ctx)
			case <-ctx.Done():
				c.flush(context.Background())
				return
			case <-c.done:
				c.flush(context.Background())
				return
			}
		}
	}()
}

// Track enqueues one event for delivery.
func (c *Collector) Track(event SearchEvent) {
	c.mu.Lock()
	if len(c.buffer) >= 2*c.batchSize {
		c.dropped++
		c.mu.Unlock()
		return
	}
	c.buffer = append(c.buffer, kafka.Event{
		Key:   event.Type,
		Value: event,
	})
	full := len(c.buffer) >= c.batchSize
	c.mu.Unlock()
	if full {
		go c.flush(context.Background())
	}
}

// Close flushes the remaining buffer and stops the loop.
func (c *Collector) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.flush(context.Background())
	})
}

func (c *Collector) flush(ctx context.Context) {
	c.mu.Lock()
	if len(c.buffer) == 0 {
		c.mu.Unlock()
		return
	}
	batch := c.buffer
	c.buffer = make([]kafka.Event, 0, c.batchSize)
	dropped := c.dropped
	c.dropped = 0
	c.mu.Unlock()

	if dropped > 0 {
		c.logger.Warn("analytics events dropped under load", "count", dropped)
	}
	flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.producer.PublishBatch(flushCtx, batch); err != nil {
		c.logger.Error("flushing analytics batch failed", "count", len(batch), "error", err)
		return
	}
	c.logger.Debug("analytics batch flushed", "count", len(batch))
}
