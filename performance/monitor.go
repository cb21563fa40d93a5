// Package performance provides the in-memory instrumentation the
// calculators write into: scoped operation timers, per-source calculation
// times and the effective-rupture count. A no-op implementation is the
// explicit default so that callers who do not care pay nothing.
package performance

import (
	"sync"
	"time"
)

// SourceTime records how long one source took to process. SourceID is the
// integer source id, not the string identifier.
type SourceTime struct {
	SourceID int
	Duration time.Duration
}

// Timer is a running scoped measurement; Stop accumulates the elapsed time
// into the operation it was started for.
type Timer interface {
	Stop()
}

// Monitor is the instrumentation handle the calculators write into.
// Implementations must be safe for use from a single calculation goroutine;
// the Recorder is additionally safe for concurrent use so that parallel
// per-source workers can share one.
type Monitor interface {
	// Scope starts a timer for a named operation.
	Scope(operation string) Timer
	// AddCalcTime appends one (source id, elapsed) record.
	AddCalcTime(sourceID int, d time.Duration)
	// AddEffRuptures increments the count of ruptures that contributed
	// non-trivial probability.
	AddEffRuptures(n int64)
}

// Recorder is the real Monitor: it keeps everything in memory for the
// caller to read back after the calculation.
type Recorder struct {
	mu          sync.Mutex
	operations  map[string]*opStats
	calcTimes   []SourceTime
	effRuptures int64
}

type opStats struct {
	total  time.Duration
	counts int64
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{operations: make(map[string]*opStats)}
}

type recorderTimer struct {
	r     *Recorder
	op    string
	start time.Time
}

func (t recorderTimer) Stop() {
	elapsed := time.Since(t.start)
	t.r.mu.Lock()
	defer t.r.mu.Unlock()
	stats, ok := t.r.operations[t.op]
	if !ok {
		stats = &opStats{}
		t.r.operations[t.op] = stats
	}
	stats.total += elapsed
	stats.counts++
}

func (r *Recorder) Scope(operation string) Timer {
	return recorderTimer{r: r, op: operation, start: time.Now()}
}

func (r *Recorder) AddCalcTime(sourceID int, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calcTimes = append(r.calcTimes, SourceTime{SourceID: sourceID, Duration: d})
}

func (r *Recorder) AddEffRuptures(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effRuptures += n
}

// CalcTimes returns a copy of the per-source timing records.
func (r *Recorder) CalcTimes() []SourceTime {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SourceTime, len(r.calcTimes))
	copy(out, r.calcTimes)
	return out
}

// EffRuptures returns the effective rupture count.
func (r *Recorder) EffRuptures() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.effRuptures
}

// OperationTime returns the accumulated time and invocation count of a
// scoped operation.
func (r *Recorder) OperationTime(operation string) (time.Duration, int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, ok := r.operations[operation]
	if !ok {
		return 0, 0
	}
	return stats.total, stats.counts
}

// Merge folds another Recorder's records into r. Order is irrelevant:
// calc times concatenate and counters sum.
func (r *Recorder) Merge(other *Recorder) {
	other.mu.Lock()
	times := make([]SourceTime, len(other.calcTimes))
	copy(times, other.calcTimes)
	eff := other.effRuptures
	ops := make(map[string]opStats, len(other.operations))
	for op, stats := range other.operations {
		ops[op] = *stats
	}
	other.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calcTimes = append(r.calcTimes, times...)
	r.effRuptures += eff
	for op, stats := range ops {
		dst, ok := r.operations[op]
		if !ok {
			dst = &opStats{}
			r.operations[op] = dst
		}
		dst.total += stats.total
		dst.counts += stats.counts
	}
}

// Nop is the do-nothing Monitor used when no instrumentation is requested.
type Nop struct{}

type nopTimer struct{}

func (nopTimer) Stop() {}

func (Nop) Scope(string) Timer             { return nopTimer{} }
func (Nop) AddCalcTime(int, time.Duration) {}
func (Nop) AddEffRuptures(int64)           {}
