// Package schedule provides cancelable delayed tasks. All tasks run on the
// caller's event loop: Timer hands due tasks to a dispatch function instead
// of running them on the timer goroutine.
package schedule

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Handle cancels a scheduled task. Cancel reports whether the task was
// stopped before it ran.
type Handle interface {
	Cancel() bool
}

type Scheduler interface {
	After(d time.Duration, task func()) Handle
}

// Group tracks the handles of one logical unit of work so they can be
// canceled together.
type Group struct {
	mu      sync.Mutex
	handles []Handle
}

func (g *Group) Add(h Handle) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handles = append(g.handles, h)
}

// CancelAll cancels every tracked task and returns how many had not run yet.
func (g *Group) CancelAll() int {
	g.mu.Lock()
	handles := g.handles
	g.handles = nil
	g.mu.Unlock()

	n := 0
	for _, h := range handles {
		if h.Cancel() {
			n++
		}
	}
	return n
}

// Timer schedules with time.AfterFunc. When the timer fires, the task is
// passed to dispatch, which must deliver it to the event loop.
type Timer struct {
	dispatch func(func())
}

func NewTimer(dispatch func(func())) *Timer {
	return &Timer{dispatch: dispatch}
}

type timerHandle struct {
	timer    *time.Timer
	canceled atomic.Bool
	done     atomic.Bool
}

func (h *timerHandle) Cancel() bool {
	if h.done.Load() || !h.canceled.CompareAndSwap(false, true) {
		return false
	}
	h.timer.Stop()
	return !h.done.Load()
}

func (t *Timer) After(d time.Duration, task func()) Handle {
	h := &timerHandle{}
	h.timer = time.AfterFunc(d, func() {
		if h.canceled.Load() {
			return
		}
		t.dispatch(func() {
			// A cancel may land between the timer firing and the loop
			// picking the task up.
			if h.canceled.Load() {
				return
			}
			h.done.Store(true)
			task()
		})
	})
	return h
}

// Manual is a virtual clock. Nothing runs until Advance is called, which
// makes it suitable for tests and for fast-forwarding a headless session.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	at       time.Duration
	seq      int
	task     func()
	canceled bool
	ran      bool
	owner    *Manual
}

func (m *manualTask) Cancel() bool {
	m.owner.mu.Lock()
	defer m.owner.mu.Unlock()
	if m.canceled || m.ran {
		return false
	}
	m.canceled = true
	return true
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) After(d time.Duration, task func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{at: m.now + d, seq: m.seq, task: task, owner: m}
	m.tasks = append(m.tasks, t)
	return t
}

// Elapsed is the virtual time passed so far.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending counts tasks that are neither run nor canceled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.canceled && !t.ran {
			n++
		}
	}
	return n
}

// Advance moves virtual time forward by d, running due tasks in deadline
// order. Tasks scheduled by a running task are picked up if they fall due
// within the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		t.task()
	}

	m.mu.Lock()
	m.now = target
	m.compact()
	m.mu.Unlock()
}

// RunAll advances until no task is pending.
func (m *Manual) RunAll() {
	for {
		m.mu.Lock()
		var next *manualTask
		for _, t := range m.tasks {
			if t.canceled || t.ran {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		now := m.now
		m.mu.Unlock()
		if next == nil {
			return
		}
		m.Advance(next.at - now)
	}
}

func (m *Manual) nextDue(target time.Duration) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].at != m.tasks[j].at {
			return m.tasks[i].at < m.tasks[j].at
		}
		return m.tasks[i].seq < m.tasks[j].seq
	})
	for _, t := range m.tasks {
		if t.canceled || t.ran || t.at > target {
			continue
		}
		t.ran = true
		if t.at > m.now {
			m.now = t.at
		}
		return t
	}
	return nil
}

func (m *Manual) compact() {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.canceled && !t.ran {
			live = append(live, t)
		}
	}
	m.tasks = live
}
