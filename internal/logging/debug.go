package logging

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Event is one structured debug record.
type Event struct {
	Location string         `json:"location"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"`
}

type DebugSink interface {
	Debug(ctx context.Context, ev Event)
}

type ctxKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type debugRecord struct {
	Time      string `json:"time"`
	Level     string `json:"level"`
	RequestID string `json:"request_id,omitempty"`
	Event
}

func newRecord(ctx context.Context, ev Event, at time.Time) debugRecord {
	return debugRecord{
		Time:      at.UTC().Format(time.RFC3339Nano),
		Level:     "debug",
		RequestID: RequestID(ctx),
		Event:     ev,
	}
}

// LogSink writes events as JSON lines through a standard logger.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink uses the standard logger when logger is nil.
func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Debug(ctx context.Context, ev Event) {
	buf, err := json.Marshal(newRecord(ctx, ev, time.Now()))
	if err != nil {
		log.Printf("debug sink: encode %s: %v", ev.Location, err)
		return
	}
	if s.logger == nil {
		log.Println(string(buf))
		return
	}
	s.logger.Println(string(buf))
}

type NopSink struct{}

func (NopSink) Debug(context.Context, Event) {}

type MultiSink []DebugSink

func (m MultiSink) Debug(ctx context.Context, ev Event) {
	for _, s := range m {
		if s != nil {
			s.Debug(ctx, ev)
		}
	}
}
