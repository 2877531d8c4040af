package observ

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Phase is one timed step of a command run.
type Phase struct {
	Name string
	Dur  time.Duration
	Note string
}

// Timer records the phases of a run. It is safe for concurrent use; phases
// are reported in the order they started.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
	now    func() time.Time
}

// NewTimer creates an empty Timer.
func NewTimer() *Timer {
	return &Timer{now: time.Now}
}

// Track starts a phase and returns the function that ends it. A nil Timer
// tracks nothing.
func (t *Timer) Track(name string) func(note string) {
	if t == nil {
		return func(string) {}
	}
	t.mu.Lock()
	idx := len(t.phases)
	t.phases = append(t.phases, Phase{Name: name})
	t.mu.Unlock()
	start := t.now()
	return func(note string) {
		d := t.now().Sub(start)
		t.mu.Lock()
		t.phases[idx].Dur = d
		t.phases[idx].Note = note
		t.mu.Unlock()
	}
}

// Phases returns a copy of the recorded phases.
func (t *Timer) Phases() []Phase {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Phase(nil), t.phases...)
}

// Total sums the duration of every phase.
func (t *Timer) Total() time.Duration {
	var total time.Duration
	for _, p := range t.Phases() {
		total += p.Dur
	}
	return total
}

// WriteSummary prints one line per phase followed by the total.
func (t *Timer) WriteSummary(w io.Writer) error {
	phases := t.Phases()
	if len(phases) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "timings:"); err != nil {
		return err
	}
	for _, p := range phases {
		line := fmt.Sprintf("  %-12s %9.2f ms", p.Name, millis(p.Dur))
		if p.Note != "" {
			line += "  (" + p.Note + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  %-12s %9.2f ms\n", "total", millis(t.Total()))
	return err
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
