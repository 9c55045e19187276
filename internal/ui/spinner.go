// Package ui renders terminal progress while searches are in flight.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var frames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

const frameInterval = 80 * time.Millisecond

// Spinner displays an animated progress indicator.
type Spinner struct {
	out io.Writer

	mu      sync.Mutex
	msg     string
	done    chan struct{}
	stopped chan struct{}
}

// NewSpinner creates a spinner writing to stderr (not yet running).
func NewSpinner() *Spinner {
	return NewSpinnerTo(os.Stderr)
}

// NewSpinnerTo creates a spinner writing to w.
func NewSpinnerTo(w io.Writer) *Spinner {
	return &Spinner{out: w}
}

// Start begins the animation with msg. Starting a running spinner only
// changes the message.
func (s *Spinner) Start(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = msg
	if s.done != nil {
		return
	}
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})
	go s.run(s.done, s.stopped)
}

// Update changes the message while the spinner runs.
func (s *Spinner) Update(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// Stop halts the animation, waits for it to exit and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	done, stopped := s.done, s.stopped
	s.done, s.stopped = nil, nil
	s.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	<-stopped
	fmt.Fprint(s.out, "\r\033[K")
}

func (s *Spinner) run(done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	tick := time.NewTicker(frameInterval)
	defer tick.Stop()

	for i := 0; ; i++ {
		select {
		case <-done:
			return
		case <-tick.C:
			s.mu.Lock()
			msg := s.msg
			s.mu.Unlock()
			fmt.Fprintf(s.out, "\r\033[K%c %s", frames[i%len(frames)], msg)
		}
	}
}
