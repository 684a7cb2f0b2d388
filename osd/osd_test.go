package osd

import (
	"sync"
	"testing"
	"time"
	"unicode/utf8"
)

func TestIconName(t *testing.T) {
	if IconName(true) != "microphone-sensitivity-muted-symbolic" {
		t.Error(IconName(true))
	}
	if IconName(false) != "microphone-sensitivity-high-symbolic" {
		t.Error(IconName(false))
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		text  string
		muted bool
		want  string
	}{
		{TextActivated, false, "Microphone activated"},
		{TextDeactivated, true, "Microphone deactivated"},
		{"", true, "Microphone muted"},
		{"", false, "Microphone on"},
	}
	for _, tt := range tests {
		if got := Summary(tt.text, tt.muted); got != tt.want {
			t.Errorf("Summary(%q, %v) = %q, want %q", tt.text, tt.muted, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		level float64
		want  int32
		ok    bool
	}{
		{NoLevel, 0, false},
		{0, 0, true},
		{0.5, 50, true},
		{0.333, 33, true},
		{1, 100, true},
		{1.7, 100, true},
	}
	for _, tt := range tests {
		got, ok := Percent(tt.level)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Percent(%v) = %d, %v; want %d, %v", tt.level, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLevelBar(t *testing.T) {
	for _, pct := range []int32{0, 50, 100} {
		bar := levelBar(pct)
		if n := utf8.RuneCountInString(bar); n != barWidth {
			t.Errorf("levelBar(%d) has %d cells", pct, n)
		}
	}
}

func TestWorkerDeliversLatest(t *testing.T) {
	var mu sync.Mutex
	var got []request
	block := make(chan struct{})
	first := make(chan struct{})

	w := startWorker(func(r request) {
		mu.Lock()
		got = append(got, r)
		n := len(got)
		mu.Unlock()
		if n == 1 {
			close(first)
			<-block
		}
	})

	w.Show("a", false, 0)
	<-first
	// The worker is busy; only the last of these survives.
	w.Show("b", false, 0)
	w.Show("c", true, 0)
	close(block)

	deadline := time.After(time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("got %d requests", n)
		case <-time.After(5 * time.Millisecond):
		}
	}
	w.stop()
	w.stop()
	w.Show("d", false, 0)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0].text != "a" || got[1].text != "c" {
		t.Errorf("delivered %+v", got)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	var d Display = &r
	d.Show(TextActivated, false, NoLevel)
	calls := r.Calls()
	if len(calls) != 1 || calls[0].Text != TextActivated || calls[0].Level != NoLevel {
		t.Errorf("calls = %+v", calls)
	}
}
