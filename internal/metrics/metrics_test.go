package metrics

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	c := NewCounter("c", "help", nil)
	c.Inc()
	c.Add(4)
	assert.Equal(t, uint64(5), c.Value())
}

func TestCounterConcurrent(t *testing.T) {
	c := NewCounter("c", "help", nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(5000), c.Value())
}

func TestGauge(t *testing.T) {
	g := NewGauge("g", "help", nil)
	assert.Equal(t, 0.0, g.Value())
	g.Set(0.0654)
	assert.Equal(t, 0.0654, g.Value())
}

func TestHistogramBuckets(t *testing.T) {
	h := NewHistogram("h", "help", nil, []float64{10, 1, 5})
	for _, v := range []float64{0.5, 1, 3, 5, 7, 100} {
		h.Observe(v)
	}
	assert.Equal(t, uint64(6), h.Count())
	assert.InDelta(t, 116.5, h.Sum(), 1e-9)
	assert.InDelta(t, 116.5/6, h.Mean(), 1e-9)

	h.mu.Lock()
	cum := h.cumulative()
	h.mu.Unlock()
	// le=1, le=5, le=10, +Inf
	assert.Equal(t, []uint64{2, 4, 5, 6}, cum)
}

func TestHistogramTimer(t *testing.T) {
	h := NewHistogram("h", "help", nil, nil)
	d := h.Timer().Stop()
	assert.GreaterOrEqual(t, d, time.Duration(0))
	assert.Equal(t, uint64(1), h.Count())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry("ns", "sub")
	c := r.RegisterCounter("total", "help", nil)
	assert.Equal(t, "ns_sub_total", c.Name())
	assert.Same(t, c, r.RegisterCounter("total", "other", nil))
	assert.Same(t, c, r.GetCounter("total"))
	assert.Nil(t, r.GetCounter("missing"))

	g := r.RegisterGauge("g", "help", nil)
	assert.Same(t, g, r.GetGauge("g"))
	h := r.RegisterHistogram("h", "help", nil, nil)
	assert.Same(t, h, r.GetHistogram("h"))
}

func TestWritePrometheus(t *testing.T) {
	r := NewRegistry("vigcrack", "")
	r.RegisterCounter("b_total", "B things", nil).Add(2)
	r.RegisterCounter("a_total", "A things", Labels{"model": "english"}).Inc()
	r.RegisterGauge("last_key_length", "Last", nil).Set(5)
	h := r.RegisterHistogram("size", "Sizes", nil, []float64{100, 1000})
	h.Observe(300)

	var buf bytes.Buffer
	require.NoError(t, r.WritePrometheus(&buf))
	out := buf.String()

	assert.Contains(t, out, "# TYPE vigcrack_a_total counter\n")
	assert.Contains(t, out, `vigcrack_a_total{model="english"} 1`)
	assert.Contains(t, out, "vigcrack_b_total 2\n")
	assert.Contains(t, out, "vigcrack_last_key_length 5\n")
	assert.Contains(t, out, `vigcrack_size_bucket{le="100"} 0`)
	assert.Contains(t, out, `vigcrack_size_bucket{le="1000"} 1`)
	assert.Contains(t, out, `vigcrack_size_bucket{le="+Inf"} 1`)
	assert.Contains(t, out, "vigcrack_size_count 1\n")
	assert.Less(t, strings.Index(out, "vigcrack_a_total"), strings.Index(out, "vigcrack_b_total"))
}

func TestWriteJSON(t *testing.T) {
	r := NewRegistry("vigcrack", "")
	r.RegisterCounter("analyses_total", "help", nil).Inc()
	r.RegisterHistogram("d", "help", nil, []float64{1}).Observe(0.5)

	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf))

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "counter", doc["vigcrack_analyses_total"]["type"])
	assert.Equal(t, float64(1), doc["vigcrack_analyses_total"]["value"])
	assert.Equal(t, float64(1), doc["vigcrack_d"]["count"])
}

func TestSnapshotAndReset(t *testing.T) {
	m := NewCrackerMetrics(nil)
	m.AnalysesTotal.Inc()
	m.LastKeyLength.Set(6)
	m.AnalysisDuration.Observe(0.01)

	snap := m.Registry().Snapshot()
	assert.Equal(t, uint64(1), snap["vigcrack_analyses_total"])
	assert.Equal(t, 6.0, snap["vigcrack_last_key_length"])
	assert.Equal(t, uint64(1), snap["vigcrack_analysis_duration_seconds_count"])

	m.Registry().Reset()
	assert.Equal(t, uint64(0), m.AnalysesTotal.Value())
	assert.Equal(t, 0.0, m.LastKeyLength.Value())
	assert.Equal(t, uint64(0), m.AnalysisDuration.Count())
}

func TestMetricTypeString(t *testing.T) {
	assert.Equal(t, "counter", TypeCounter.String())
	assert.Equal(t, "gauge", TypeGauge.String())
	assert.Equal(t, "histogram", TypeHistogram.String())
	assert.Equal(t, "unknown", MetricType(9).String())
}
