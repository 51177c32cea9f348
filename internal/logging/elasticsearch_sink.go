package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

type ElasticsearchSinkConfig struct {
	Index          string
	QueueSize      int
	RequestTimeout time.Duration
}

// ElasticsearchSink indexes debug events into Elasticsearch from a background
// worker. Debug never blocks: events are dropped once the queue is full or
// the sink is closed.
type ElasticsearchSink struct {
	es      *elasticsearch.Client
	index   string
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	queue   chan debugRecord
	dropped atomic.Int64
	wg      sync.WaitGroup
}

func NewElasticsearchSink(es *elasticsearch.Client, cfg ElasticsearchSinkConfig) *ElasticsearchSink {
	if cfg.Index == "" {
		cfg.Index = "kidsevents-debug"
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 3 * time.Second
	}
	s := &ElasticsearchSink{
		es:      es,
		index:   cfg.Index,
		timeout: cfg.RequestTimeout,
		queue:   make(chan debugRecord, cfg.QueueSize),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *ElasticsearchSink) Debug(ctx context.Context, ev Event) {
	rec := newRecord(ctx, ev, time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.dropped.Add(1)
		return
	}
	select {
	case s.queue <- rec:
	default:
		s.dropped.Add(1)
	}
}

// Dropped reports how many events were discarded because the queue was full
// or the sink was already closed.
func (s *ElasticsearchSink) Dropped() int64 {
	return s.dropped.Load()
}

// Close flushes queued events and stops the worker. Later events are dropped.
func (s *ElasticsearchSink) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *ElasticsearchSink) run() {
	defer s.wg.Done()
	for rec := range s.queue {
		if err := s.indexRecord(rec); err != nil {
			log.Printf("debug sink: elasticsearch index: %v", err)
		}
	}
}

func (s *ElasticsearchSink) indexRecord(rec debugRecord) error {
	doc := map[string]any{
		"@timestamp": rec.Time,
		"level":      rec.Level,
		"location":   rec.Location,
		"message":    rec.Message,
	}
	if rec.RequestID != "" {
		doc["request_id"] = rec.RequestID
	}
	if len(rec.Data) > 0 {
		doc["data"] = rec.Data
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	resp, err := s.es.Index(
		s.index,
		bytes.NewReader(payload),
		s.es.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return fmt.Errorf("elasticsearch index error: %s", resp.String())
	}
	return nil
}
