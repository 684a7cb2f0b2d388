// Package osd shows transient on-screen feedback for the microphone state.
package osd

import "sync"

// NoLevel hides the level bar.
const NoLevel = -1.0

const (
	TextActivated   = "Microphone activated"
	TextDeactivated = "Microphone deactivated"
)

type Display interface {
	// Show never blocks. Pending requests are replaced by newer ones.
	Show(text string, muted bool, level float64)
	Close()
}

func IconName(muted bool) string {
	if muted {
		return "microphone-sensitivity-muted-symbolic"
	}
	return "microphone-sensitivity-high-symbolic"
}

// Summary is the title line. Feedback from a toggle carries no text, so the
// state is spelled out instead.
func Summary(text string, muted bool) string {
	if text != "" {
		return text
	}
	if muted {
		return "Microphone muted"
	}
	return "Microphone on"
}

// Percent converts a 0-1 level for hints; ok is false for NoLevel.
func Percent(level float64) (pct int32, ok bool) {
	if level < 0 {
		return 0, false
	}
	if level > 1 {
		level = 1
	}
	return int32(level*100 + 0.5), true
}

type request struct {
	text  string
	muted bool
	level float64
}

// worker serializes sends on a goroutine of its own. The send func owns any
// state it needs between calls.
type worker struct {
	reqs chan request
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func startWorker(send func(request)) *worker {
	w := &worker{
		reqs: make(chan request, 1),
		done: make(chan struct{}),
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-w.done:
				return
			case r := <-w.reqs:
				send(r)
			}
		}
	}()
	return w
}

func (w *worker) Show(text string, muted bool, level float64) {
	select {
	case <-w.done:
		return
	default:
	}
	r := request{text: text, muted: muted, level: level}
	select {
	case <-w.reqs:
	default:
	}
	select {
	case w.reqs <- r:
	default:
	}
}

func (w *worker) stop() {
	w.once.Do(func() {
		close(w.done)
		w.wg.Wait()
	})
}

type Nop struct{}

func (Nop) Show(string, bool, float64) {}
func (Nop) Close()                     {}

// Recorder keeps every Show call, for tests of the code that drives a
// Display.
type Recorder struct {
	mu    sync.Mutex
	Shown []Shown
}

type Shown struct {
	Text  string
	Muted bool
	Level float64
}

func (r *Recorder) Show(text string, muted bool, level float64) {
	r.mu.Lock()
	r.Shown = append(r.Shown, Shown{Text: text, Muted: muted, Level: level})
	r.mu.Unlock()
}

func (r *Recorder) Close() {}

func (r *Recorder) Calls() []Shown {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Shown(nil), r.Shown...)
}
