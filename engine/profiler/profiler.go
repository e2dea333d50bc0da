package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
)

// Profiler tracks frame rate and memory statistics and logs them at a fixed interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now func() time.Time
}

// Stats is one profiler report.
type Stats struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64
}

// NewProfiler creates a Profiler reporting once per second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return newProfiler(time.Now)
}

func newProfiler(now func() time.Time) *Profiler {
	return &Profiler{
		lastTime:       now(),
		updateInterval: time.Second,
		now:            now,
	}
}

// Tick should be called once per presented frame. When the update interval has elapsed it logs
// frame rate, heap usage, allocation rate and GC pauses at info level.
//
// Returns:
//   - Stats: the report, valid only when the second result is true
//   - bool: true if stats were logged this tick
func (p *Profiler) Tick() (Stats, bool) {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	st := Stats{
		FPS:     float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:  float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:   float64(p.memStats.Sys) / 1024 / 1024,
		GCCount: p.memStats.NumGC,
	}
	st.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	if st.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		st.LastPauseUs = p.memStats.PauseNs[(st.GCCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if st.GCCount-startIdx > 256 {
			startIdx = st.GCCount - 256
		}
		for i := startIdx; i < st.GCCount; i++ {
			st.MaxPauseUs = max(st.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	common.Logger().Info("profiler",
		slog.Float64("fps", st.FPS),
		slog.Float64("heap_mb", st.HeapMB),
		slog.Float64("alloc_rate_mb_s", st.AllocRateMB),
		slog.Uint64("gc", uint64(st.GCCount)),
		slog.Uint64("gc_last_pause_us", st.LastPauseUs),
		slog.Uint64("gc_max_pause_us", st.MaxPauseUs),
		slog.Float64("sys_mb", st.SysMB),
	)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = st.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return st, true
}
