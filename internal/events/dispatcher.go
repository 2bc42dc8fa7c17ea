package events

import (
	"context"
	"sync"
	"time"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/logger"

	"github.com/google/uuid"
)

// Publisher accepts domain events. Publish never blocks and never fails the
// caller; delivery problems are logged.
type Publisher interface {
	Publish(ctx context.Context, evt domain.Event)
}

// Handler delivers an event to one sink (notification rows, email, broker).
type Handler interface {
	Name() string
	Handle(ctx context.Context, evt domain.Event) error
}

type Config struct {
	Workers     int
	QueueSize   int
	MaxRetries  int
	BaseBackoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = time.Second
	}
	return c
}

// Dispatcher is a bounded in-process event queue drained by a worker pool.
// Each handler gets its own retry budget with exponential backoff, so a
// failing email does not repeat an already stored notification.
type Dispatcher struct {
	cfg      Config
	handlers []Handler
	jobs     chan domain.Event

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewDispatcher(cfg Config, handlers ...Handler) *Dispatcher {
	cfg = cfg.withDefaults()
	return &Dispatcher{
		cfg:      cfg,
		handlers: handlers,
		jobs:     make(chan domain.Event, cfg.QueueSize),
	}
}

// Start launches the workers. They run until Close is called or ctx ends.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	logger.Debug("Event worker started", "worker", id)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Event worker stopping", "worker", id)
			return
		case evt, ok := <-d.jobs:
			if !ok {
				logger.Debug("Event worker drained", "worker", id)
				return
			}
			d.dispatch(ctx, evt)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, evt domain.Event) {
	for _, h := range d.handlers {
		d.deliver(ctx, h, evt)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, h Handler, evt domain.Event) {
	for attempt := 0; ; attempt++ {
		err := h.Handle(ctx, evt)
		if err == nil {
			return
		}
		if attempt >= d.cfg.MaxRetries {
			logger.Error("Event delivery failed, dropping",
				"handler", h.Name(), "eventID", evt.ID, "type", evt.Type, "attempts", attempt+1, "error", err)
			return
		}

		backoff := d.cfg.BaseBackoff << attempt
		logger.Warn("Event delivery failed, retrying",
			"handler", h.Name(), "eventID", evt.ID, "type", evt.Type, "attempt", attempt+1, "backoff", backoff, "error", err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// Publish stamps evt and enqueues it. A full or closed queue drops the event.
func (d *Dispatcher) Publish(ctx context.Context, evt domain.Event) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		logger.WarnContext(ctx, "Event dispatcher closed, dropping event", "eventID", evt.ID, "type", evt.Type)
		return
	}

	select {
	case d.jobs <- evt:
		logger.DebugContext(ctx, "Event queued", "eventID", evt.ID, "type", evt.Type)
	default:
		logger.ErrorContext(ctx, "Event queue is full, dropping event", "eventID", evt.ID, "type", evt.Type)
	}
}

// Close stops intake, lets workers drain queued events and waits for them.
// ctx bounds the wait; when it expires in-flight retries are abandoned.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		if d.cancel != nil {
			d.cancel()
		}
		return ctx.Err()
	}
}

var _ Publisher = (*Dispatcher)(nil)

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.Event) {}
