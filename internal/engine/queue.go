package engine

import (
	"sync"
)

// InputKind distinguishes inputs delivered to the Run loop.
type InputKind int

const (
	// InputStart begins playback at the entry scene.
	InputStart InputKind = iota + 1
	// InputInteract is a click: disables auto mode, else advances.
	InputInteract
	// InputAdvance calls AdvanceDialogue.
	InputAdvance
	// InputToggleAuto toggles auto mode.
	InputToggleAuto
	// InputToggleSkip toggles skip mode.
	InputToggleSkip
	// InputChoose selects Input.Choice.
	InputChoose
	// InputSave writes the save record.
	InputSave
	// InputLoad restores the save record.
	InputLoad
	// InputFunc runs Input.Fn on the loop goroutine.
	InputFunc

	// inputTimer delivers a scheduled callback.
	inputTimer
)

func (k InputKind) String() string {
	switch k {
	case InputStart:
		return "start"
	case InputInteract:
		return "interact"
	case InputAdvance:
		return "advance"
	case InputToggleAuto:
		return "toggle_auto"
	case InputToggleSkip:
		return "toggle_skip"
	case InputChoose:
		return "choose"
	case InputSave:
		return "save"
	case InputLoad:
		return "load"
	case InputFunc:
		return "func"
	case inputTimer:
		return "timer"
	}
	return "unknown"
}

// Input is one unit of work for the Run loop.
type Input struct {
	Kind InputKind

	// Choice is the option index for InputChoose.
	Choice int

	// Fn is run for InputFunc. It has exclusive access to the engine.
	Fn func(*Engine) error

	// Done, if set, receives the outcome once the input has been handled.
	// It is called on the loop goroutine.
	Done func(error)

	fire func()
}

// inputQueue is a thread-safe FIFO queue for inputs.
//
// The queue is unbounded so timer goroutines and the terminal reader never
// block on a slow loop.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop (prevents goroutine hangs on context cancellation).
type inputQueue struct {
	mu     sync.Mutex
	inputs []Input
	closed bool
	signal chan struct{} // Signals input availability (buffered, size 1)
}

func newInputQueue() *inputQueue {
	return &inputQueue{
		inputs: make([]Input, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an input to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *inputQueue) Enqueue(in Input) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.inputs = append(q.inputs, in)

	// Non-blocking: the buffer of 1 coalesces multiple signals
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front input without blocking.
// Returns (Input{}, false) if the queue is empty.
func (q *inputQueue) TryDequeue() (Input, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.inputs) == 0 {
		return Input{}, false
	}

	in := q.inputs[0]

	// Release the closures held by the slot
	q.inputs[0] = Input{}

	if len(q.inputs) == 1 {
		q.inputs = q.inputs[:0]
	} else {
		q.inputs = q.inputs[1:]
	}

	return in, true
}

// Wait returns a channel that signals when inputs may be available.
// The channel is closed once the queue is closed.
func (q *inputQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *inputQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inputs)
}

// Closed reports whether Close has been called.
func (q *inputQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close signals that no more inputs will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *inputQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
