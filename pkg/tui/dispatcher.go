package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/navgraph/pkg/errors"
)

// ErrNotRunning is returned by [Dispatcher.Dispatch] after Stop.
var ErrNotRunning = errors.New(errors.ErrCodeClosed, "terminal program is not running")

// wakeMsg tells the model that dispatched closures are waiting.
type wakeMsg struct{}

// Dispatcher runs closures inside bubbletea's update loop, which makes the
// program's Update goroutine the UI context of the navigator.
//
// Closures are queued and the program is woken with a message; the model
// drains the queue from Update. Closures dispatched before Attach wait for it.
// Stop runs whatever is still queued on the caller so no job is lost when the
// program exits.
type Dispatcher struct {
	mu      sync.Mutex
	queue   []func()
	send    func(tea.Msg)
	stopped bool

	runMu sync.Mutex
}

// NewDispatcher creates a detached dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Attach routes closures to p.
func (d *Dispatcher) Attach(p *tea.Program) {
	d.attach(p.Send)
}

func (d *Dispatcher) attach(send func(tea.Msg)) {
	d.mu.Lock()
	d.send = send
	pending := len(d.queue) > 0
	d.mu.Unlock()
	if pending {
		send(wakeMsg{})
	}
}

// Dispatch implements executor.Dispatcher.
func (d *Dispatcher) Dispatch(fn func()) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return ErrNotRunning
	}
	d.queue = append(d.queue, fn)
	send := d.send
	d.mu.Unlock()

	if send != nil {
		send(wakeMsg{})
	}
	return nil
}

// Stop rejects further closures and runs the queued ones on the caller.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.send = nil
	d.mu.Unlock()
	d.run()
}

// run drains the queue in order.
func (d *Dispatcher) run() {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	for {
		d.mu.Lock()
		q := d.queue
		d.queue = nil
		d.mu.Unlock()
		if len(q) == 0 {
			return
		}
		for _, fn := range q {
			fn()
		}
	}
}
