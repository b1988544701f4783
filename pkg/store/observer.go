package store

import (
	"sync/atomic"
	"time"

	"github.com/getmockd/schemafaker/pkg/generator"
)

// Observer receives a callback after every store operation. Callbacks run
// synchronously on the caller's goroutine, outside collection locks.
type Observer interface {
	OnCreate(resource string, key string, item *generator.Instance, duration time.Duration)
	OnRead(resource string, key string, duration time.Duration)
	OnList(resource string, count int, duration time.Duration)
	OnUpdate(resource string, key string, item *generator.Instance, duration time.Duration)
	OnDelete(resource string, key string, duration time.Duration)
	OnError(resource string, operation string, err error)
	OnReset(resources []string, duration time.Duration)
}

// NoopObserver ignores every callback.
type NoopObserver struct{}

func (NoopObserver) OnCreate(string, string, *generator.Instance, time.Duration) {}
func (NoopObserver) OnRead(string, string, time.Duration)                        {}
func (NoopObserver) OnList(string, int, time.Duration)                           {}
func (NoopObserver) OnUpdate(string, string, *generator.Instance, time.Duration) {}
func (NoopObserver) OnDelete(string, string, time.Duration)                      {}
func (NoopObserver) OnError(string, string, error)                               {}
func (NoopObserver) OnReset([]string, time.Duration)                             {}

// MultiObserver fans callbacks out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) OnCreate(resource, key string, item *generator.Instance, d time.Duration) {
	for _, o := range m {
		o.OnCreate(resource, key, item, d)
	}
}

func (m MultiObserver) OnRead(resource, key string, d time.Duration) {
	for _, o := range m {
		o.OnRead(resource, key, d)
	}
}

func (m MultiObserver) OnList(resource string, count int, d time.Duration) {
	for _, o := range m {
		o.OnList(resource, count, d)
	}
}

func (m MultiObserver) OnUpdate(resource, key string, item *generator.Instance, d time.Duration) {
	for _, o := range m {
		o.OnUpdate(resource, key, item, d)
	}
}

func (m MultiObserver) OnDelete(resource, key string, d time.Duration) {
	for _, o := range m {
		o.OnDelete(resource, key, d)
	}
}

func (m MultiObserver) OnError(resource, operation string, err error) {
	for _, o := range m {
		o.OnError(resource, operation, err)
	}
}

func (m MultiObserver) OnReset(resources []string, d time.Duration) {
	for _, o := range m {
		o.OnReset(resources, d)
	}
}

// MetricsObserver counts operations. Counters are atomic.
type MetricsObserver struct {
	createCount    atomic.Int64
	readCount      atomic.Int64
	listCount      atomic.Int64
	updateCount    atomic.Int64
	deleteCount    atomic.Int64
	errorCount     atomic.Int64
	resetCount     atomic.Int64
	totalLatencyNs atomic.Int64
}

// NewMetricsObserver creates a zeroed MetricsObserver.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

func (m *MetricsObserver) OnCreate(_, _ string, _ *generator.Instance, d time.Duration) {
	m.createCount.Add(1)
	m.totalLatencyNs.Add(int64(d))
}

func (m *MetricsObserver) OnRead(_, _ string, d time.Duration) {
	m.readCount.Add(1)
	m.totalLatencyNs.Add(int64(d))
}

func (m *MetricsObserver) OnList(_ string, _ int, d time.Duration) {
	m.listCount.Add(1)
	m.totalLatencyNs.Add(int64(d))
}

func (m *MetricsObserver) OnUpdate(_, _ string, _ *generator.Instance, d time.Duration) {
	m.updateCount.Add(1)
	m.totalLatencyNs.Add(int64(d))
}

func (m *MetricsObserver) OnDelete(_, _ string, d time.Duration) {
	m.deleteCount.Add(1)
	m.totalLatencyNs.Add(int64(d))
}

func (m *MetricsObserver) OnError(string, string, error) {
	m.errorCount.Add(1)
}

func (m *MetricsObserver) OnReset(_ []string, d time.Duration) {
	m.resetCount.Add(1)
	m.totalLatencyNs.Add(int64(d))
}

// Snapshot returns the current counter values.
func (m *MetricsObserver) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		CreateCount:  m.createCount.Load(),
		ReadCount:    m.readCount.Load(),
		ListCount:    m.listCount.Load(),
		UpdateCount:  m.updateCount.Load(),
		DeleteCount:  m.deleteCount.Load(),
		ErrorCount:   m.errorCount.Load(),
		ResetCount:   m.resetCount.Load(),
		TotalLatency: time.Duration(m.totalLatencyNs.Load()),
	}
}

// MetricsSnapshot is a point-in-time copy of MetricsObserver's counters.
type MetricsSnapshot struct {
	CreateCount  int64         `json:"createCount"`
	ReadCount    int64         `json:"readCount"`
	ListCount    int64         `json:"listCount"`
	UpdateCount  int64         `json:"updateCount"`
	DeleteCount  int64         `json:"deleteCount"`
	ErrorCount   int64         `json:"errorCount"`
	ResetCount   int64         `json:"resetCount"`
	TotalLatency time.Duration `json:"totalLatencyNs"`
}

// TotalOperations returns the number of successful operations.
func (s MetricsSnapshot) TotalOperations() int64 {
	return s.CreateCount + s.ReadCount + s.ListCount + s.UpdateCount + s.DeleteCount
}
