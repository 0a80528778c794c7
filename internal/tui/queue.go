package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// drainMsg asks Update to run the queued work.
type drainMsg struct{}

// queue is the preview's mainloop.Dispatcher. Work posted from any
// goroutine, including from inside Update, runs in order the next time
// Update sees a drainMsg.
type queue struct {
	mu   sync.Mutex
	fns  []func()
	wake func(tea.Msg) // nil until the program runs
}

func (q *queue) Post(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	first := len(q.fns) == 1
	wake := q.wake
	q.mu.Unlock()

	if first && wake != nil {
		go wake(drainMsg{})
	}
}

func (q *queue) setWake(wake func(tea.Msg)) {
	q.mu.Lock()
	q.wake = wake
	pending := len(q.fns) > 0
	q.mu.Unlock()

	if pending {
		go wake(drainMsg{})
	}
}

// drain runs queued work until the queue is empty.
func (q *queue) drain() int {
	n := 0
	for {
		q.mu.Lock()
		fns := q.fns
		q.fns = nil
		q.mu.Unlock()

		if len(fns) == 0 {
			return n
		}
		for _, fn := range fns {
			fn()
		}
		n += len(fns)
	}
}
