// Package writer persists step answers in the background. The in-memory
// session is updated first; the writer catches storage up and reports the
// outcome of every row through Feedback.
package writer

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/ctateo21/homelead/internal/domain/port"
)

var (
	// ErrQueueFull is returned when the session's shard has no room.
	ErrQueueFull = errors.New("step writer queue is full")
	// ErrClosed is returned by Enqueue after Close.
	ErrClosed = errors.New("step writer is closed")
)

// Feedback receives the outcome of each row.
type Feedback interface {
	Synced(ctx context.Context, row port.StoredStep)
	Failed(ctx context.Context, row port.StoredStep, attempts int, cause error)
}

// Config tunes the writer.
type Config struct {
	Workers     int
	QueueSize   int
	MaxRetries  int
	BaseBackoff time.Duration
	// MaxBackoff caps a single wait. Zero means 5s.
	MaxBackoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 100 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Second
	}
	return c
}

// StepWriter implements port.StepWriter. Rows are sharded by session ID so
// writes for one session land in the order they were queued.
type StepWriter struct {
	repo     port.StepRepository
	feedback Feedback
	logger   *slog.Logger
	cfg      Config

	mu     sync.RWMutex
	closed bool
	shards []chan port.StoredStep
	wg     sync.WaitGroup
}

// New starts cfg.Workers workers writing to repo.
func New(repo port.StepRepository, feedback Feedback, cfg Config, logger *slog.Logger) *StepWriter {
	cfg = cfg.withDefaults()
	w := &StepWriter{
		repo:     repo,
		feedback: feedback,
		logger:   logger,
		cfg:      cfg,
		shards:   make([]chan port.StoredStep, cfg.Workers),
	}
	perShard := cfg.QueueSize / cfg.Workers
	if perShard < 1 {
		perShard = 1
	}
	for i := range w.shards {
		w.shards[i] = make(chan port.StoredStep, perShard)
		w.wg.Add(1)
		go w.run(w.shards[i])
	}
	return w
}

// Enqueue queues row without blocking.
func (w *StepWriter) Enqueue(ctx context.Context, row port.StoredStep) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrClosed
	}

	select {
	case w.shards[w.shardFor(row.SessionID)] <- row:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting rows, drains the queue and waits for the workers.
func (w *StepWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, ch := range w.shards {
		close(ch)
	}
	w.mu.Unlock()

	w.wg.Wait()
	return nil
}

func (w *StepWriter) shardFor(sessionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return int(h.Sum32() % uint32(len(w.shards)))
}

func (w *StepWriter) run(queue <-chan port.StoredStep) {
	defer w.wg.Done()
	for row := range queue {
		w.write(context.Background(), row)
	}
}

// write saves row with exponential backoff between attempts.
func (w *StepWriter) write(ctx context.Context, row port.StoredStep) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= w.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(w.backoff(attempt))
		}
		attempts++

		if _, err := w.repo.SaveStep(ctx, row); err != nil {
			lastErr = err
			w.logger.DebugContext(ctx, "step write attempt failed",
				"session_id", row.SessionID,
				"step", row.StepName,
				"attempt", attempts,
				"error", err,
			)
			continue
		}
		w.feedback.Synced(ctx, row)
		return
	}

	w.feedback.Failed(ctx, row, attempts, lastErr)
}

// backoff doubles from BaseBackoff, adds up to 50% jitter and is capped at
// MaxBackoff.
func (w *StepWriter) backoff(attempt int) time.Duration {
	d := w.cfg.BaseBackoff << uint(attempt-1)
	if d <= 0 || d > w.cfg.MaxBackoff {
		d = w.cfg.MaxBackoff
	}
	if half := int64(d) / 2; half > 0 {
		d += time.Duration(rand.Int63n(half))
	}
	if d > w.cfg.MaxBackoff {
		d = w.cfg.MaxBackoff
	}
	return d
}
