package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Metric names recorded by the session and the saver.
const (
	SessionLoadTotal    = "session_load_total"
	SessionResizeTotal  = "session_resize_total"
	SaveStartedTotal    = "save_started_total"
	SaveSucceededTotal  = "save_succeeded_total"
	SaveFailedTotal     = "save_failed_total"
	SaveDurationSeconds = "save_duration_seconds"
)

const historyLimit = 100

// Collector is an in-memory metric store. A nil *Collector is a valid
// no-op sink.
type Collector struct {
	metrics map[string]*Metric
	mu      sync.RWMutex
}

// Metric is one named series with fixed labels.
type Metric struct {
	Name      string            `json:"name"`
	Type      string            `json:"type"`
	Value     float64           `json:"value"`
	Count     int64             `json:"count,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
	History   []float64         `json:"history,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

func NewCollector() *Collector {
	return &Collector{
		metrics: make(map[string]*Metric),
	}
}

// IncCounter adds one to a counter.
func (c *Collector) IncCounter(name string, labels map[string]string) {
	c.AddCounter(name, 1, labels)
}

// AddCounter adds value to a counter.
func (c *Collector) AddCounter(name string, value float64, labels map[string]string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	metric := c.series(name, "counter", labels)
	metric.Value += value
	metric.Timestamp = time.Now().Unix()
}

// SetGauge replaces a gauge value.
func (c *Collector) SetGauge(name string, value float64, labels map[string]string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	metric := c.series(name, "gauge", labels)
	metric.Value = value
	metric.Timestamp = time.Now().Unix()
}

// ObserveHistogram records one observation. Value holds the running sum;
// History keeps the latest observations.
func (c *Collector) ObserveHistogram(name string, value float64, labels map[string]string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	metric := c.series(name, "histogram", labels)
	metric.Value += value
	metric.Count++
	metric.History = append(metric.History, value)
	if len(metric.History) > historyLimit {
		metric.History = metric.History[1:]
	}
	metric.Timestamp = time.Now().Unix()
}

// ObserveDuration records the time elapsed since start in seconds.
func (c *Collector) ObserveDuration(name string, start time.Time, labels map[string]string) {
	c.ObserveHistogram(name, time.Since(start).Seconds(), labels)
}

// series returns the metric for name+labels, creating it. Caller holds mu.
func (c *Collector) series(name, typ string, labels map[string]string) *Metric {
	key := buildKey(name, labels)
	if metric, ok := c.metrics[key]; ok {
		return metric
	}

	metric := &Metric{Name: name, Type: typ, Labels: copyLabels(labels)}
	c.metrics[key] = metric
	return metric
}

// buildKey renders name:k=v pairs with labels in key order so equal label
// sets always map to the same series.
func buildKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(name)
	for _, k := range keys {
		sb.WriteString(":" + k + "=" + labels[k])
	}
	return sb.String()
}

func copyLabels(labels map[string]string) map[string]string {
	if len(labels) == 0 {
		return nil
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

// GetMetric returns a copy of one series, or nil.
func (c *Collector) GetMetric(name string, labels map[string]string) *Metric {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	metric, ok := c.metrics[buildKey(name, labels)]
	if !ok {
		return nil
	}
	cp := *metric
	cp.Labels = copyLabels(metric.Labels)
	cp.History = append([]float64(nil), metric.History...)
	return &cp
}

// Value returns the current value of a series, 0 when absent.
func (c *Collector) Value(name string, labels map[string]string) float64 {
	if metric := c.GetMetric(name, labels); metric != nil {
		return metric.Value
	}
	return 0
}

// Total sums a counter across all label sets.
func (c *Collector) Total(name string) float64 {
	var total float64
	for _, metric := range c.Snapshot() {
		if metric.Name == name {
			total += metric.Value
		}
	}
	return total
}

// Snapshot returns copies of every series, ordered by key.
func (c *Collector) Snapshot() []Metric {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.metrics))
	for k := range c.metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Metric, 0, len(keys))
	for _, k := range keys {
		metric := *c.metrics[k]
		metric.Labels = copyLabels(metric.Labels)
		metric.History = nil
		out = append(out, metric)
	}
	return out
}

// Reset drops every series.
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = make(map[string]*Metric)
}
