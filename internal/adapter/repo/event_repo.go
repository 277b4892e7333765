package repo

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"adstudio/internal/infra"
	"adstudio/internal/sqlinline"
	"adstudio/internal/wizard"
)

const (
	defaultEventBuffer = 256
	eventWriteTimeout  = 5 * time.Second
)

// EventStat aggregates generation events for one flow, call and status.
type EventStat struct {
	Flow         string  `json:"flow"`
	Call         string  `json:"call"`
	Status       string  `json:"status"`
	Total        int64   `json:"total"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

// EventRepo persists wizard generation events. Record only enqueues; a
// single writer goroutine inserts rows until Close.
type EventRepo struct {
	sql     infra.SQLExecutor
	logger  zerolog.Logger
	queue   chan wizard.Event
	closing chan struct{}
	done    chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

// NewEventRepo starts the writer. buffer <= 0 selects the default size.
func NewEventRepo(sql infra.SQLExecutor, logger zerolog.Logger, buffer int) *EventRepo {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	r := &EventRepo{
		sql:     sql,
		logger:  logger.With().Str("component", "event_repo").Logger(),
		queue:   make(chan wizard.Event, buffer),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go r.loop()
	return r
}

// Record enqueues ev. Events are dropped when the queue is full or the
// repository is closed.
func (r *EventRepo) Record(_ context.Context, ev wizard.Event) {
	select {
	case <-r.closing:
		r.dropped.Add(1)
		return
	default:
	}
	select {
	case r.queue <- ev:
	default:
		n := r.dropped.Add(1)
		r.logger.Warn().Int64("dropped", n).Str("session_id", ev.SessionID).Msg("event queue full")
	}
}

// Dropped reports how many events were never written.
func (r *EventRepo) Dropped() int64 {
	return r.dropped.Load()
}

// Close flushes queued events and stops the writer.
func (r *EventRepo) Close(ctx context.Context) error {
	r.once.Do(func() { close(r.closing) })
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *EventRepo) loop() {
	defer close(r.done)
	for {
		select {
		case ev := <-r.queue:
			r.write(ev)
		case <-r.closing:
			for {
				select {
				case ev := <-r.queue:
					r.write(ev)
				default:
					return
				}
			}
		}
	}
}

func (r *EventRepo) write(ev wizard.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), eventWriteTimeout)
	defer cancel()
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertGenerationEvent,
		ev.SessionID,
		string(ev.Flow),
		string(ev.Action),
		string(ev.Call),
		ev.Status,
		ev.Error,
		int(ev.Duration/time.Millisecond),
		at.UTC(),
	)
	if err != nil {
		r.dropped.Add(1)
		r.logger.Error().Err(err).Str("session_id", ev.SessionID).Str("call", string(ev.Call)).Msg("insert generation event")
	}
}

// Summary aggregates events created at or after since.
func (r *EventRepo) Summary(ctx context.Context, since time.Time) ([]EventStat, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QGenerationEventSummary, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]EventStat, 0, 16)
	for rows.Next() {
		var s EventStat
		if err := rows.Scan(&s.Flow, &s.Call, &s.Status, &s.Total, &s.AvgLatencyMS); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// EnsureSchema creates the tables used by the service when missing.
func EnsureSchema(ctx context.Context, sql infra.SQLExecutor) error {
	for _, stmt := range sqlinline.Schema {
		if _, err := sql.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var _ wizard.Recorder = (*EventRepo)(nil)
