// Package task provides the cooperative executor that drives platform
// tasks.
//
// Scheduling is single-threaded: one task at a time progresses the CPU, and
// spawned tasks run only when the current one returns. A task chain that
// fails is reported and dropped; the remaining tasks continue.
package task

import (
	"go.uber.org/zap"

	"github.com/jkki-i/wie/internal/log"
)

// Task is a unit of cooperative work, typically a guest entry point driven
// through the bridge.
type Task func() error

// Executor is a single-threaded run queue.
type Executor struct {
	queue []Task
}

// NewExecutor creates an empty executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Spawn enqueues a task. The task runs when the executor reaches it; Spawn
// never runs it inline.
func (e *Executor) Spawn(t Task) {
	e.queue = append(e.queue, t)
}

// Pending returns the number of queued tasks.
func (e *Executor) Pending() int {
	return len(e.queue)
}

// RunOnce runs the next queued task, if any. Returns false when the queue is
// empty.
func (e *Executor) RunOnce() bool {
	if len(e.queue) == 0 {
		return false
	}

	t := e.queue[0]
	e.queue = e.queue[1:]

	if err := t(); err != nil && log.L != nil {
		log.L.Error("task failed", zap.Error(err))
	}

	return true
}

// Run drains the queue. Tasks spawned while running are executed in the same
// drain.
func (e *Executor) Run() {
	for e.RunOnce() {
	}
}
