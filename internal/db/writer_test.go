package db

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go-portmap/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type flakyKV struct {
	*Memory
	mu     sync.Mutex
	fail   bool
	writes int
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.writes++
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errors.New("backend down")
	}
	return f.Memory.Set(ctx, key, value)
}

func TestWriter_LastValueWins(t *testing.T) {
	kv := NewMemory()
	w := NewWriter(kv, "doc", zap.NewNop(), nil)
	for _, v := range []string{"one", "two", "three"} {
		w.Enqueue([]byte(v))
	}
	w.Close()

	got, err := kv.Get(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, "three", string(got))
}

func TestWriter_EnqueueAfterCloseIsIgnored(t *testing.T) {
	kv := NewMemory()
	w := NewWriter(kv, "doc", nil, nil)
	w.Enqueue([]byte("kept"))
	w.Close()
	w.Enqueue([]byte("dropped"))
	w.Close()

	got, err := kv.Get(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, "kept", string(got))
}

func TestWriter_RecordsFailures(t *testing.T) {
	kv := &flakyKV{Memory: NewMemory(), fail: true}
	m := metrics.New(nil)
	w := NewWriter(kv, "doc", zap.NewNop(), m)
	w.Enqueue([]byte("x"))
	w.Close()

	assert.Equal(t, 1, kv.writes)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Persists.WithLabelValues("error")))
	_, err := kv.Get(context.Background(), "doc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWriter_CloseReportsLastWrite(t *testing.T) {
	kv := &flakyKV{Memory: NewMemory(), fail: true}
	w := NewWriter(kv, "doc", zap.NewNop(), nil)
	w.Enqueue([]byte("lost"))
	err := w.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
	assert.Error(t, w.Close())

	kv = &flakyKV{Memory: NewMemory()}
	w = NewWriter(kv, "doc", zap.NewNop(), nil)
	w.Enqueue([]byte("kept"))
	assert.NoError(t, w.Close())
}
