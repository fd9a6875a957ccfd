// Package mailbox implements the two ordered task queues that decouple
// submitter goroutines, the engine's I/O worker, and the host loop from
// one another.
package mailbox

import "sync"

// Task is a unit of deferred work. Tasks are invoked in the order they
// were pushed.
type Task func()

// Mailbox is a lock-protected, ordered queue of Tasks. Push appends
// under the lock; Drain swaps the internal slice for a fresh one and
// releases the lock *before* invoking any task, so a task that pushes
// further work onto the same Mailbox can never deadlock.
type Mailbox struct {
	mu    sync.Mutex
	tasks []Task
}

// New returns an empty Mailbox ready for use.
func New() *Mailbox {
	return &Mailbox{}
}

// Push appends task to the mailbox. Safe to call from any goroutine.
func (m *Mailbox) Push(task Task) {
	m.mu.Lock()
	m.tasks = append(m.tasks, task)
	m.mu.Unlock()
}

// Drain atomically takes ownership of every task pushed so far and
// invokes them in push order. No lock is held during invocation, so a
// task is free to Push onto this same Mailbox.
func (m *Mailbox) Drain() {
	m.mu.Lock()
	tasks := m.tasks
	m.tasks = nil
	m.mu.Unlock()

	for _, task := range tasks {
		task()
	}
}

// Len reports how many tasks are currently queued. Intended for tests
// and diagnostics; the count can change the instant it's returned.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
