// Package monitoring defines the error reporting contract. Implementations
// are constructed at startup and passed to the components that report.
package monitoring

import (
	"sync"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	// CapturePanic reports a recovered panic value without re-panicking.
	CapturePanic(v any)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) CapturePanic(any)                          {}
func (NopMonitor) Flush(time.Duration)                       {}

// Captured is one exception recorded by a MemoryMonitor.
type Captured struct {
	Err  error
	Tags map[string]string
}

// MemoryMonitor keeps reported exceptions in memory.
type MemoryMonitor struct {
	mu     sync.Mutex
	errs   []Captured
	panics []any
}

func (m *MemoryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	cp := make(map[string]string, len(tags))
	for k, v := range tags {
		cp[k] = v
	}
	m.mu.Lock()
	m.errs = append(m.errs, Captured{Err: err, Tags: cp})
	m.mu.Unlock()
}

func (m *MemoryMonitor) CapturePanic(v any) {
	m.mu.Lock()
	m.panics = append(m.panics, v)
	m.mu.Unlock()
}

func (m *MemoryMonitor) Flush(time.Duration) {}

// Exceptions returns a copy of the captured exceptions.
func (m *MemoryMonitor) Exceptions() []Captured {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Captured(nil), m.errs...)
}

// Panics returns a copy of the captured panic values.
func (m *MemoryMonitor) Panics() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.panics...)
}
