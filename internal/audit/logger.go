// Package audit records every tool invocation with hashed callers and
// masked arguments.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aitools/aitools/internal/security"
	"github.com/aitools/aitools/internal/tools"
)

const (
	defaultSinkTimeout = 5 * time.Second
	defaultQueueSize   = 1024
)

// Record is one audited invocation.
type Record struct {
	InvocationID string         `json:"invocation_id"`
	Tool         string         `json:"tool"`
	Mode         string         `json:"mode"`
	CallerHash   string         `json:"caller_hash,omitempty"`
	Arguments    map[string]any `json:"arguments,omitempty"`
	Success      bool           `json:"success"`
	Fallback     bool           `json:"fallback"`
	ErrorKind    string         `json:"error_kind,omitempty"`
	Error        string         `json:"error,omitempty"`
	DurationMs   int64          `json:"duration_ms"`
	Timestamp    time.Time      `json:"@timestamp"`
}

// Sink persists audit records.
type Sink interface {
	Name() string
	Write(ctx context.Context, rec Record) error
	Ping(ctx context.Context) error
	Close()
}

// Logger is a tools.Observer that emits an audit event per invocation and
// forwards it to the configured sinks. Sink writes happen on a background
// writer fed by a bounded queue; when the queue is full the record is dropped
// and only the log event remains.
type Logger struct {
	enabled     bool
	masker      *security.Masker
	sinks       []Sink
	sinkTimeout time.Duration
	now         func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan Record
	done   chan struct{}
}

// NewLogger returns a Logger. A nil masker leaves arguments out of records.
func NewLogger(enabled bool, masker *security.Masker, sinks ...Sink) *Logger {
	l := &Logger{
		enabled:     enabled,
		masker:      masker,
		sinks:       sinks,
		sinkTimeout: defaultSinkTimeout,
		now:         time.Now,
	}
	if enabled && len(sinks) > 0 {
		l.queue = make(chan Record, defaultQueueSize)
		l.done = make(chan struct{})
		go l.writer()
	}
	return l
}

// Sinks returns the configured sinks, for health checks.
func (l *Logger) Sinks() []Sink { return l.sinks }

// Observe implements tools.Observer. It never waits on a sink.
func (l *Logger) Observe(_ context.Context, inv tools.Invocation, res tools.Result) {
	if !l.enabled {
		return
	}
	rec := l.record(inv, res)

	evt := log.Info().
		Str("event", "invocation_audit").
		Str("invocation_id", rec.InvocationID).
		Str("tool", rec.Tool).
		Str("mode", rec.Mode).
		Str("caller_hash", rec.CallerHash).
		Bool("success", rec.Success).
		Bool("fallback", rec.Fallback).
		Int64("duration_ms", rec.DurationMs)
	if rec.Arguments != nil {
		evt = evt.Interface("arguments", rec.Arguments)
	}
	if rec.ErrorKind != "" {
		evt = evt.Str("error_kind", rec.ErrorKind).Str("error", rec.Error)
	}
	evt.Msg("audit")

	if l.queue == nil {
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- rec:
	default:
		log.Warn().
			Str("invocation_id", rec.InvocationID).
			Int("queue_size", cap(l.queue)).
			Msg("audit queue full, record not forwarded to sinks")
	}
}

func (l *Logger) writer() {
	defer close(l.done)
	for rec := range l.queue {
		l.write(rec)
	}
}

func (l *Logger) write(rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), l.sinkTimeout)
	defer cancel()
	for _, s := range l.sinks {
		if err := s.Write(ctx, rec); err != nil {
			log.Warn().Err(err).
				Str("sink", s.Name()).
				Str("invocation_id", rec.InvocationID).
				Msg("audit sink write failed")
		}
	}
}

// Close drains queued records into the sinks, then releases them. Records
// observed after Close are logged only.
func (l *Logger) Close() {
	if l.queue != nil {
		l.mu.Lock()
		if !l.closed {
			l.closed = true
			close(l.queue)
		}
		l.mu.Unlock()
		<-l.done
	}
	for _, s := range l.sinks {
		s.Close()
	}
}

func (l *Logger) record(inv tools.Invocation, res tools.Result) Record {
	rec := Record{
		InvocationID: res.InvocationID,
		Tool:         inv.Tool,
		Mode:         string(inv.Mode),
		CallerHash:   security.HashIdentifier(inv.Caller),
		Success:      res.OK(),
		Fallback:     res.Fallback,
		DurationMs:   res.DurationMs,
		Timestamp:    l.now().UTC(),
	}
	if rec.InvocationID == "" {
		rec.InvocationID = inv.ID
	}
	if l.masker != nil {
		rec.Arguments = l.masker.MaskArguments(inv.Arguments)
	}
	if res.Error != nil {
		rec.ErrorKind = string(res.Error.Kind)
		rec.Error = res.Error.Message
	}
	return rec
}
