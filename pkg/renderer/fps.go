package renderer

import (
	"sync"
	"time"
)

// DefaultFPSWindow is the number of recent frames the FPS statistics cover
const DefaultFPSWindow = 60

// FPSStats summarizes frame rates over the recent window
type FPSStats struct {
	Current float64 `json:"current"`
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Frames  int     `json:"frames"` // Frames recorded since creation
}

// FPSCounter tracks frame durations over a sliding window
type FPSCounter struct {
	mu        sync.Mutex
	window    int
	durations []time.Duration
	next      int
	total     int
}

// NewFPSCounter creates a counter over the last window frames
func NewFPSCounter(window int) *FPSCounter {
	if window <= 0 {
		window = DefaultFPSWindow
	}
	return &FPSCounter{
		window:    window,
		durations: make([]time.Duration, 0, window),
	}
}

// Record adds the duration of one frame
func (f *FPSCounter) Record(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.durations) < f.window {
		f.durations = append(f.durations, d)
	} else {
		f.durations[f.next] = d
	}
	f.next = (f.next + 1) % f.window
	f.total++
}

// Stats returns the statistics of the current window. Average is frames
// divided by the time they took; Min and Max are per-frame rates.
func (f *FPSCounter) Stats() FPSStats {
	f.mu.Lock()
	defer f.mu.Unlock()

	stats := FPSStats{Frames: f.total}
	if len(f.durations) == 0 {
		return stats
	}

	last := (f.next - 1 + len(f.durations)) % len(f.durations)
	stats.Current = rate(f.durations[last])

	var sum time.Duration
	for i, d := range f.durations {
		sum += d
		r := rate(d)
		if i == 0 || r < stats.Min {
			stats.Min = r
		}
		if i == 0 || r > stats.Max {
			stats.Max = r
		}
	}
	if sum > 0 {
		stats.Average = float64(len(f.durations)) / sum.Seconds()
	}

	return stats
}

func rate(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return 1 / d.Seconds()
}
