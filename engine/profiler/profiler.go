package profiler

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-render/engine/log"
)

// PassStats accumulates the timings of one pass.
type PassStats struct {
	Pass   string
	Frames int
	Total  time.Duration
	Max    time.Duration
	Last   time.Duration
}

// Avg returns the mean duration per recorded frame.
func (s PassStats) Avg() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Frames)
}

// Snapshot is the state logged at the end of an interval.
type Snapshot struct {
	FPS         float64
	HeapMB      float64
	SysMB       float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	Passes      []PassStats
}

// Profiler tracks frame rate, memory statistics and per-pass timings.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	mu             sync.Mutex
	logger         log.Logger
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	order    []string
	passes   map[string]*PassStats
	interval map[string]*PassStats
	last     Snapshot
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:         log.New("profiler"),
		lastTime:       time.Now(),
		updateInterval: time.Second,
		passes:         make(map[string]*PassStats),
		interval:       make(map[string]*PassStats),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Record adds one timing sample for a pass.
//
// Parameters:
//   - pass: the pass name
//   - d: the time the pass took this frame
func (p *Profiler) Record(pass string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.passes[pass]; !ok {
		p.order = append(p.order, pass)
	}
	for _, m := range []map[string]*PassStats{p.passes, p.interval} {
		s, ok := m[pass]
		if !ok {
			s = &PassStats{Pass: pass}
			m[pass] = s
		}
		s.Frames++
		s.Total += d
		s.Last = d
		if d > s.Max {
			s.Max = d
		}
	}
}

// Passes returns the cumulative per-pass statistics in first-recorded order.
func (p *Profiler) Passes() []PassStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.collect(p.passes)
}

// Last returns the snapshot logged by the most recent interval.
func (p *Profiler) Last() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *Profiler) collect(m map[string]*PassStats) []PassStats {
	out := make([]PassStats, 0, len(m))
	for _, name := range p.order {
		if s, ok := m[name]; ok {
			out = append(out, *s)
		}
	}
	return out
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times,
// total memory and the average time of every recorded pass.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}
	seconds := max(elapsed.Seconds(), 1e-9)

	runtime.ReadMemStats(&p.memStats)
	s := Snapshot{
		FPS:     float64(p.frameCount) / seconds,
		HeapMB:  float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:   float64(p.memStats.Sys) / 1024 / 1024,
		GCCount: p.memStats.NumGC,
	}
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateMB = float64(allocDelta) / 1024 / 1024 / seconds

	if s.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		s.LastPauseUs = p.memStats.PauseNs[(s.GCCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if s.GCCount-startIdx > 256 {
			startIdx = s.GCCount - 256
		}
		for i := startIdx; i < s.GCCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > s.MaxPauseUs {
				s.MaxPauseUs = pause
			}
		}
	}
	s.Passes = p.collect(p.interval)

	p.logger.Infof("FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB%s",
		s.FPS, s.HeapMB, s.AllocRateMB, s.GCCount, s.LastPauseUs, s.MaxPauseUs, s.SysMB, formatPasses(s.Passes))

	p.last = s
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.interval = make(map[string]*PassStats)
	return true
}

func formatPasses(passes []PassStats) string {
	if len(passes) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(" | Passes:")
	for _, s := range passes {
		fmt.Fprintf(&b, " %s %.2fms", s.Pass, float64(s.Avg().Microseconds())/1000)
	}
	return b.String()
}
