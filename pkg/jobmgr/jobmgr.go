// Package jobmgr runs named, cancelable background jobs and tracks which of
// them are alive.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(ctx, func(msg string) {
//	    log.Println("JOB:", msg)
//	})
//
//	err := jm.StartAsync("autofire:_selfaware", func(ctx context.Context) error {
//	    // loop until ctx is cancelled or the work decides to stop
//	    return nil
//	})
//
//	// later...
//	_ = jm.Stop("autofire:_selfaware")
//
// Jobs are removed automatically when their runner returns.
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrRunning    = errors.New("job already running")
	ErrNotRunning = errors.New("job not running")
)

// StatusReporter receives lifecycle events for jobs.
// Example messages:
//
//	running:autofire:_selfaware
//	error:autofire:_selfaware:context canceled
//	done:autofire:_selfaware
type StatusReporter func(string)

type job struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager orchestrates starting, stopping and tracking jobs.
// It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	parent   context.Context
	jobs     map[string]*job
	Reporter StatusReporter
}

// NewManager creates a Manager whose jobs are cancelled with parent.
// The reporter callback may be nil.
func NewManager(parent context.Context, reporter StatusReporter) *Manager {
	if parent == nil {
		parent = context.Background()
	}
	return &Manager{
		parent:   parent,
		jobs:     make(map[string]*job),
		Reporter: reporter,
	}
}

// StartAsync runs a job in a separate goroutine and returns immediately.
// If a job with the same name is already running, ErrRunning is returned.
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrRunning, name)
	}

	ctx, cancel := context.WithCancel(m.parent)
	j := &job{cancel: cancel, done: make(chan struct{})}
	m.jobs[name] = j

	go func() {
		defer close(j.done)
		defer cancel()

		m.report("running:" + name)
		if err := runner(ctx); err != nil {
			m.report("error:" + name + ":" + err.Error())
		} else {
			m.report("done:" + name)
		}

		m.mu.Lock()
		if m.jobs[name] == j {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()

	return nil
}

// Running reports whether a job with that name is alive.
func (m *Manager) Running(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[name]
	return ok
}

// Stop cancels a running job by name and waits for it to return.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	j, ok := m.jobs[name]
	if ok {
		delete(m.jobs, name)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRunning, name)
	}
	j.cancel()
	<-j.done
	return nil
}

// StopAll cancels every job and waits for all of them.
func (m *Manager) StopAll() {
	for _, name := range m.List() {
		_ = m.Stop(name)
	}
}

// List returns the sorted names of active jobs.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Status returns a human-readable summary of active jobs.
// Example:
//
//	"Running jobs: autofire:_selfaware"
//
// If none are running: "No jobs are running."
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
