package persistence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/skilltree/internal/logging"
	"github.com/aretw0/skilltree/pkg/domain"
)

// DefaultDelay is the quiet period a Debouncer waits before saving.
const DefaultDelay = time.Second

// Saver persists a state. *Adapter implements it.
type Saver interface {
	Save(ctx context.Context, state domain.State) error
}

// Debouncer coalesces bursts of changes into one save of the latest state.
// Saves never overlap, and an older state is never written after a newer one.
type Debouncer struct {
	saver  Saver
	delay  time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *domain.State
	gen     uint64

	// saveMu serializes writes to the store.
	saveMu sync.Mutex
}

// DebounceOption configures a Debouncer.
type DebounceOption func(*Debouncer)

// WithDebounceLogger configures the logger used for failed background saves.
func WithDebounceLogger(logger *slog.Logger) DebounceOption {
	return func(d *Debouncer) {
		d.logger = logger
	}
}

// NewDebouncer creates a Debouncer. A non-positive delay means DefaultDelay.
func NewDebouncer(saver Saver, delay time.Duration, opts ...DebounceOption) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	d := &Debouncer{
		saver:  saver,
		delay:  delay,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trigger schedules a save of state, replacing any save still pending.
func (d *Debouncer) Trigger(state domain.State) {
	d.mu.Lock()
	defer d.mu.Unlock()

	snapshot := state.Snapshot()
	d.pending = &snapshot
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Pending reports whether a save is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) fire(gen uint64) {
	d.saveMu.Lock()
	defer d.saveMu.Unlock()

	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	state := *d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	if err := d.saver.Save(context.Background(), state); err != nil {
		d.logger.Error("debounced save failed", "err", err)
	}
}

// Flush saves the pending state immediately, if there is one.
func (d *Debouncer) Flush(ctx context.Context) error {
	d.saveMu.Lock()
	defer d.saveMu.Unlock()

	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()

	if pending == nil {
		return nil
	}
	return d.saver.Save(ctx, *pending)
}

// Stop cancels the pending save without writing it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
}
