package db

import (
	"context"
	"sync"
	"time"

	"go-portmap/internal/metrics"

	"go.uber.org/zap"
)

const writeTimeout = 10 * time.Second

// Writer persists documents in the background. Only the most recent
// enqueued value is written; older pending values are dropped.
type Writer struct {
	kv  KV
	key string
	log *zap.Logger
	m   *metrics.Metrics

	mu      sync.Mutex
	pending []byte
	dirty   bool
	closed  bool
	err     error
	wake    chan struct{}
	done    chan struct{}
}

func NewWriter(kv KV, key string, log *zap.Logger, m *metrics.Metrics) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Writer{
		kv:   kv,
		key:  key,
		log:  log,
		m:    m,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go w.loop()
	return w
}

// Enqueue schedules data for writing. It never blocks on the backend.
func (w *Writer) Enqueue(data []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending = data
	w.dirty = true
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Writer) loop() {
	defer close(w.done)
	for range w.wake {
		w.flush()
	}
	w.flush()
}

func (w *Writer) flush() {
	w.mu.Lock()
	if !w.dirty {
		w.mu.Unlock()
		return
	}
	data := w.pending
	w.pending, w.dirty = nil, false
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	start := time.Now()
	err := w.kv.Set(ctx, w.key, data)
	w.m.ObservePersist(start, err)
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
	if err != nil {
		w.log.Error("persist failed", zap.String("key", w.key), zap.Int("bytes", len(data)), zap.Error(err))
		return
	}
	w.log.Debug("persisted", zap.String("key", w.key), zap.Int("bytes", len(data)))
}

// Close writes anything still pending and stops the writer. It returns the
// error of the last write, nil if that write succeeded or nothing was written.
func (w *Writer) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.wake)
	}
	w.mu.Unlock()
	<-w.done

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}
