package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveMutation("upsertConnection", nil)
	m.ObserveMutation("upsertConnection", nil)
	m.ObserveMutation("deleteSwitch", errors.New("boom"))
	m.ObservePersist(time.Now(), nil)
	m.SetEntities(map[string]int{"connections": 7})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Mutations.WithLabelValues("upsertConnection", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("deleteSwitch", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Persists.WithLabelValues("ok")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.Entities.WithLabelValues("connections")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveMutation("x", nil)
	m.ObservePersist(time.Now(), nil)
	m.SetEntities(map[string]int{"x": 1})
}
