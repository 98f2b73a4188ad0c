// Package streaming implements the incremental result-reporting
// protocol shared by the evaluators: a finite, strictly ordered event
// sequence with zero or more progress updates followed by exactly one
// terminal event.
package streaming

import "fmt"

// Event is one element of an incremental result sequence.
// TaskComplete marks the terminal event; Updates carries a progress
// message on non-terminal events and Content the payload on the
// terminal one.
type Event struct {
	TaskComplete bool   `json:"is_task_complete"`
	Updates      string `json:"updates,omitempty"`
	Content      any    `json:"content,omitempty"`
}

// Producer generates a sequence through the Reporter it is handed.
// It runs on its own goroutine and must call Done at most once;
// Run guarantees a terminal event even if it never does.
type Producer func(r *Reporter)

// Reporter is the producer-side handle of one sequence. It is owned by
// a single goroutine; emits suspend the producer until the consumer
// receives the event.
type Reporter struct {
	ch   chan Event
	done bool
}

// Run starts the producer and returns the consumer's event channel.
// The channel is unbuffered, so the producer advances in lock-step
// with the consumer. The returned channel is closed after the terminal
// event; exactly one terminal event is always delivered, even when the
// producer panics or returns without completing.
func Run(fn Producer) <-chan Event {
	ch := make(chan Event)
	r := &Reporter{ch: ch}

	go func() {
		defer close(ch)
		defer func() {
			if p := recover(); p != nil {
				r.Done(fmt.Sprintf("处理请求时出错: %v", p))
				return
			}
			if !r.done {
				r.Done("处理请求时出错: 未产生结果")
			}
		}()
		fn(r)
	}()

	return ch
}

// Progress emits a non-terminal status update. It is a no-op once the
// sequence has completed.
func (r *Reporter) Progress(message string) {
	if r.done {
		return
	}
	r.ch <- Event{Updates: message}
}

// Done emits the terminal event carrying the final payload. Only the
// first call has an effect.
func (r *Reporter) Done(payload any) {
	if r.done {
		return
	}
	r.done = true
	r.ch <- Event{TaskComplete: true, Content: payload}
}
