package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// StatusWriter prints a spinning status line to a writer while a blocking
// operation (a detection probe, an installer) runs. The line is redrawn in
// place and cleared on Stop so the caller can print the final result.
type StatusWriter struct {
	w       io.Writer
	mu      sync.Mutex
	message string
	started time.Time
	done    chan struct{}
	exited  chan struct{}
	stopped bool
}

// NewStatusWriter starts a background spinner that renders msg to w every
// 100ms.
func NewStatusWriter(w io.Writer, msg string) *StatusWriter {
	sw := &StatusWriter{
		w:       w,
		message: msg,
		started: time.Now(),
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
	go sw.loop()
	return sw
}

// Update changes the message shown next to the spinner.
func (sw *StatusWriter) Update(msg string) {
	sw.mu.Lock()
	sw.message = msg
	sw.mu.Unlock()
}

// Stop clears the status line, stops the spinner and returns how long it ran.
// Calling Stop more than once is safe.
func (sw *StatusWriter) Stop() time.Duration {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return time.Since(sw.started)
	}
	sw.stopped = true
	sw.mu.Unlock()

	close(sw.done)
	<-sw.exited
	fmt.Fprint(sw.w, "\r\033[K")
	return time.Since(sw.started)
}

func (sw *StatusWriter) loop() {
	defer close(sw.exited)

	tick := 0
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sw.done:
			return
		case <-ticker.C:
			sw.mu.Lock()
			msg := sw.message
			start := sw.started
			sw.mu.Unlock()

			frame := spinnerFrames[tick%len(spinnerFrames)]
			tick++
			fmt.Fprintf(sw.w, "\r\033[K%s %s (%s)", frame, msg, FormatElapsed(time.Since(start)))
		}
	}
}

// FormatElapsed formats a duration for display in status lines.
func FormatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < 10*time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
