// Package telemetry times the stages of every batch and optionally records
// the timings. It is advisory only: nothing here changes control flow.
package telemetry

import (
	"fmt"
	"io"
	"time"
)

// Stage of one iteration.
type Stage int

const (
	Read Stage = iota
	Transpose
	Gridding
	FFT
	Plot

	NumStages
)

var stageNames = [NumStages]string{"reading", "transpose", "gridding", "fft", "plot"}

func (s Stage) String() string {
	if s < 0 || s >= NumStages {
		return "unknown"
	}
	return stageNames[s]
}

// Timings of one iteration.
type Timings struct {
	Batch  int
	Total  time.Duration
	Stages [NumStages]time.Duration
}

// Percent returns stage s as a percentage of the total.
func (t *Timings) Percent(s Stage) float64 {
	if t.Total <= 0 {
		return 0
	}
	return 100 * float64(t.Stages[s]) / float64(t.Total)
}

// Watch measures the stages of one iteration at a time.
type Watch struct {
	now     func() time.Time
	start   time.Time
	current Timings
}

// NewWatch returns a watch on the wall clock.
func NewWatch() *Watch {
	return &Watch{now: time.Now}
}

// Begin starts timing batch.
func (w *Watch) Begin(batch int) {
	w.current = Timings{Batch: batch}
	w.start = w.now()
}

// Time runs fn and adds its duration to stage s.
func (w *Watch) Time(s Stage, fn func() error) error {
	start := w.now()
	err := fn()
	w.current.Stages[s] += w.now().Sub(start)
	return err
}

// End stops timing and returns the iteration timings.
func (w *Watch) End() Timings {
	w.current.Total = w.now().Sub(w.start)
	return w.current
}

// Report writes the timings in the form
//
//	>>> Iteration 3
//	Runtime total:       120 ms
//	Runtime reading:      30 ms (25.00 %)
func Report(out io.Writer, t Timings) error {
	_, err := fmt.Fprintf(out, ">>> Iteration %d\nRuntime total:     %5d ms\n",
		t.Batch, t.Total.Milliseconds())
	if err != nil {
		return err
	}

	for s := Stage(0); s < NumStages; s++ {
		_, err = fmt.Fprintf(out, "Runtime %-10s %5d ms (%5.2f %%)\n",
			s.String()+":", t.Stages[s].Milliseconds(), t.Percent(s))
		if err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(out)
	return err
}
