package outbox

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcdev12/auction/go/internal/draft/events"
	"github.com/rs/zerolog/log"
)

type Config struct {
	BufferSize   int
	MaxRetries   int
	RetryDelay   time.Duration
	FlushTimeout time.Duration // how long buffered events get on shutdown
	SkipTypes    []events.Type // not relayed downstream
}

func DefaultConfig() Config {
	return Config{
		BufferSize:   1024,
		MaxRetries:   3,
		RetryDelay:   time.Second,
		FlushTimeout: 5 * time.Second,
		// Countdown ticks are display only.
		SkipTypes: []events.Type{events.TypeRoundTick},
	}
}

// Relay is an events.Sink that hands events to a publisher on its own
// goroutine. Emit never blocks the draft: when the buffer is full the event
// is dropped and counted.
type Relay struct {
	publisher EventPublisher
	metrics   MetricsCollector
	config    Config
	queue     chan events.Envelope
	skip      map[events.Type]bool

	mu            sync.Mutex
	running       bool
	lastEventTime time.Time

	processed atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
}

func NewRelay(publisher EventPublisher, cfg Config, metrics MetricsCollector) *Relay {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if metrics == nil {
		metrics = &NoOpMetricsCollector{}
	}
	skip := make(map[events.Type]bool, len(cfg.SkipTypes))
	for _, t := range cfg.SkipTypes {
		skip[t] = true
	}
	return &Relay{
		publisher: publisher,
		metrics:   metrics,
		config:    cfg,
		queue:     make(chan events.Envelope, cfg.BufferSize),
		skip:      skip,
	}
}

// Emit implements events.Sink
func (r *Relay) Emit(event events.Envelope) {
	if r.skip[event.Type] {
		return
	}
	select {
	case r.queue <- event:
	default:
		r.dropped.Add(1)
		r.metrics.RecordDropped(string(event.Type))
		log.Warn().
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("outbox buffer full, dropping event")
	}
}

// Run publishes queued events until ctx is cancelled, then flushes whatever
// is still buffered within FlushTimeout.
func (r *Relay) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("outbox relay already running")
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	log.Info().
		Int("buffer_size", cap(r.queue)).
		Int("max_retries", r.config.MaxRetries).
		Msg("outbox relay started")

	for {
		select {
		case <-ctx.Done():
			r.flush()
			log.Info().Uint64("processed", r.processed.Load()).Msg("outbox relay stopped")
			return nil
		case event := <-r.queue:
			r.process(ctx, event)
		}
	}
}

func (r *Relay) flush() {
	pending := len(r.queue)
	if pending == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.config.FlushTimeout)
	defer cancel()

	log.Info().Int("pending", pending).Msg("flushing outbox relay")
	for i := 0; i < pending; i++ {
		select {
		case event := <-r.queue:
			r.process(ctx, event)
		default:
			return
		}
	}
}

func (r *Relay) process(ctx context.Context, event events.Envelope) {
	start := time.Now()
	err := r.publishWithRetry(ctx, event)
	r.metrics.RecordEventProcessed(string(event.Type), err == nil, time.Since(start))
	if err != nil {
		r.failed.Add(1)
		log.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("failed to publish event")
		return
	}

	r.processed.Add(1)
	r.mu.Lock()
	r.lastEventTime = time.Now()
	r.mu.Unlock()
}

func (r *Relay) publishWithRetry(ctx context.Context, event events.Envelope) error {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.config.RetryDelay * time.Duration(attempt)):
			}
		}

		if err := r.publisher.Publish(ctx, event); err != nil {
			lastErr = err
			r.metrics.RecordPublishAttempt(string(event.Type), attempt+1, false)
			log.Warn().
				Err(err).
				Str("event_id", event.ID).
				Int("attempt", attempt+1).
				Msg("failed to publish event, retrying")
			continue
		}

		r.metrics.RecordPublishAttempt(string(event.Type), attempt+1, true)
		return nil
	}

	return fmt.Errorf("failed after %d attempts: %w", r.config.MaxRetries+1, lastErr)
}

// RelayStats is a snapshot of relay counters
type RelayStats struct {
	Running       bool      `json:"running"`
	Processed     uint64    `json:"processed"`
	Failed        uint64    `json:"failed"`
	Dropped       uint64    `json:"dropped"`
	Pending       int       `json:"pending"`
	LastEventTime time.Time `json:"last_event_time"`
}

func (r *Relay) Stats() RelayStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RelayStats{
		Running:       r.running,
		Processed:     r.processed.Load(),
		Failed:        r.failed.Load(),
		Dropped:       r.dropped.Load(),
		Pending:       len(r.queue),
		LastEventTime: r.lastEventTime,
	}
}
