package logging

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

var errCooldown = errors.New("logstash: reconnect cooldown")

type LogstashConfig struct {
	Addr          string
	DialTimeout   time.Duration
	WriteTimeout  time.Duration
	RetryInterval time.Duration
}

// LogstashWriter ships newline-terminated log lines to a Logstash TCP input.
// Writes never fail the caller: while Logstash is unreachable lines are dropped
// and the connection is retried after RetryInterval.
type LogstashWriter struct {
	cfg  LogstashConfig
	dial func(network, addr string, timeout time.Duration) (net.Conn, error)
	now  func() time.Time

	mu        sync.Mutex
	conn      net.Conn
	nextRetry time.Time
	closed    bool
}

func NewLogstashWriter(cfg LogstashConfig) (*LogstashWriter, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("logstash: empty address")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 5 * time.Second
	}
	return &LogstashWriter{cfg: cfg, dial: net.DialTimeout, now: time.Now}, nil
}

func (w *LogstashWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	line := make([]byte, 0, len(p)+1)
	line = append(line, p...)
	if line[len(line)-1] != '\n' {
		line = append(line, '\n')
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, io.ErrClosedPipe
	}
	if err := w.connect(); err != nil {
		return len(p), nil
	}
	_ = w.conn.SetWriteDeadline(w.now().Add(w.cfg.WriteTimeout))
	if _, err := w.conn.Write(line); err != nil {
		w.drop()
	}
	return len(p), nil
}

func (w *LogstashWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.conn == nil {
		return nil
	}
	err := w.conn.Close()
	w.conn = nil
	return err
}

// connect and drop expect w.mu to be held.
func (w *LogstashWriter) connect() error {
	if w.conn != nil {
		return nil
	}
	if w.now().Before(w.nextRetry) {
		return errCooldown
	}
	conn, err := w.dial("tcp", w.cfg.Addr, w.cfg.DialTimeout)
	if err != nil {
		w.nextRetry = w.now().Add(w.cfg.RetryInterval)
		return err
	}
	w.conn = conn
	w.nextRetry = time.Time{}
	return nil
}

func (w *LogstashWriter) drop() {
	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}
	w.nextRetry = w.now().Add(w.cfg.RetryInterval)
}
