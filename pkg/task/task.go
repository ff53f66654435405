// Package task provides a lean, concurrency-safe, in-memory tracker for work
// running inside the node, such as block extensions being built. Tasks are
// tracked only while they run; there is no persistence.
package task

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/LumeraProtocol/kate/pkg/logtrace"
)

// Tracker records running tasks per kind. Implementations must be
// concurrency-safe; invalid inputs are ignored.
type Tracker interface {
	Start(kind, id string)
	End(kind, id string)
	Snapshot() map[string][]Running
}

// Running is one in-flight task.
type Running struct {
	ID    string    `json:"id"`
	Since time.Time `json:"since"`
}

// InMemoryTracker is the default Tracker.
type InMemoryTracker struct {
	mu sync.RWMutex
	// kind -> id -> start
	data map[string]map[string]time.Time
	now  func() time.Time
}

// New creates and returns a new in-memory tracker.
func New() *InMemoryTracker {
	return &InMemoryTracker{data: make(map[string]map[string]time.Time), now: time.Now}
}

// Start marks a task as running. Starting a running task keeps its original
// start time.
func (t *InMemoryTracker) Start(kind, id string) {
	if kind == "" || id == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.data[kind]
	if !ok {
		m = make(map[string]time.Time)
		t.data[kind] = m
	}
	if _, exists := m[id]; !exists {
		m[id] = t.now()
	}
}

// End removes a running task. Ending an unknown task is a no-op.
func (t *InMemoryTracker) End(kind, id string) {
	if kind == "" || id == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if m, ok := t.data[kind]; ok {
		delete(m, id)
		if len(m) == 0 {
			delete(t.data, kind)
		}
	}
}

// Snapshot returns a copy of the running tasks per kind, oldest first.
func (t *InMemoryTracker) Snapshot() map[string][]Running {
	out := make(map[string][]Running)
	t.mu.RLock()
	for kind, m := range t.data {
		tasks := make([]Running, 0, len(m))
		for id, since := range m {
			tasks = append(tasks, Running{ID: id, Since: since})
		}
		sort.Slice(tasks, func(i, j int) bool {
			if tasks[i].Since.Equal(tasks[j].Since) {
				return tasks[i].ID < tasks[j].ID
			}
			return tasks[i].Since.Before(tasks[j].Since)
		})
		out[kind] = tasks
	}
	t.mu.RUnlock()
	return out
}

// Track starts a task on tr and returns the function that ends it. Start and
// end are logged at debug with the task duration. A nil tracker is allowed.
func Track(ctx context.Context, tr Tracker, kind, id string) (end func()) {
	if tr == nil {
		return func() {}
	}
	start := time.Now()
	tr.Start(kind, id)
	logtrace.Debug(ctx, "task started", logtrace.Fields{"kind": kind, "task_id": id})

	var once sync.Once
	return func() {
		once.Do(func() {
			tr.End(kind, id)
			logtrace.Debug(ctx, "task ended", logtrace.Fields{
				"kind":                 kind,
				"task_id":              id,
				logtrace.FieldDuration: time.Since(start).String(),
			})
		})
	}
}
