package frameinfo

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/gogpu/framepace/driver"
	"github.com/gogpu/framepace/internal/ringbuf"
)

// Estimator errors. ErrFrameInProgress and ErrTerminated are raised as
// panics since they indicate a caller bug.
var (
	// ErrQueryPool is returned by NewManager when the driver cannot
	// allocate the timer query pool.
	ErrQueryPool = errors.New("frameinfo: cannot allocate timer queries")

	// ErrFrameInProgress reports BeginFrame or Terminate while the query of
	// the previous BeginFrame was never ended.
	ErrFrameInProgress = errors.New("frameinfo: frame already in progress")

	// ErrTerminated reports use of a terminated Manager.
	ErrTerminated = errors.New("frameinfo: manager terminated")
)

// PID holds the controller terms of one sample.
type PID struct {
	Error      float64
	Integral   float64
	Derivative float64
}

// FrameInfo is one entry of the frame time history.
type FrameInfo struct {
	// FrameID is the id passed to the BeginFrame that issued the query.
	FrameID uint32

	// Vsync is the vsync time passed to that BeginFrame.
	Vsync time.Time

	// Duration is the raw GPU frame time.
	Duration time.Duration

	// Denoised is the median filtered frame time.
	Denoised time.Duration

	// PID holds the controller terms.
	PID PID

	// Scale is the workload scale, 2^(Kp*error + integral).
	Scale float64

	// Valid is false until MinValidSamples samples exist.
	Valid bool
}

// Stats describes the query pool activity.
type Stats struct {
	// Issued counts timer queries begun.
	Issued uint64

	// Retired counts query results read back.
	Retired uint64

	// Skipped counts frames left unmeasured because their slot still held
	// an unread result.
	Skipped uint64

	// Failed counts queries the driver reported as failed. Their slots are
	// reused without a sample.
	Failed uint64

	// InFlight is the number of queries issued and not yet retired.
	InFlight int
}

type slotState uint8

const (
	slotIdle slotState = iota
	slotRunning
	slotWaiting
)

type slot struct {
	query   driver.TimerQueryHandle
	state   slotState
	frameID uint32
	vsync   time.Time
}

// Manager is the frame time estimator.
type Manager struct {
	queries  driver.TimerQueries
	failures driver.TimerQueryFailures // nil if queries cannot fail
	pool     [PoolCount]slot
	index    int // slot used by the next BeginFrame
	last     int // oldest slot that may hold a pending result

	history *ringbuf.Ring[FrameInfo]
	scratch [MaxFrameTimeHistory]time.Duration

	stats      Stats
	terminated bool
}

// NewManager allocates the timer query pool. If q also implements
// driver.TimerQueryFailures, failed queries free their slot instead of
// holding it forever.
func NewManager(q driver.TimerQueries) (*Manager, error) {
	m := &Manager{
		queries: q,
		history: ringbuf.New[FrameInfo](MaxFrameTimeHistory),
	}
	m.failures, _ = q.(driver.TimerQueryFailures)
	for i := range m.pool {
		h, err := q.CreateTimerQuery()
		if err != nil {
			for _, s := range m.pool[:i] {
				q.DestroyTimerQuery(s.query)
			}
			return nil, fmt.Errorf("%w: query %d: %w", ErrQueryPool, i, err)
		}
		m.pool[i].query = h
	}
	slogger().Info("frameinfo: query pool ready", "queries", PoolCount)
	return m, nil
}

// BeginFrame retires the oldest pending query if its result is available,
// then issues a timer query for the frame about to be recorded.
//
// If the slot for this frame still holds an unread result, which happens
// when the GPU is PoolCount frames behind or a query never completes, the
// frame is left unmeasured and the slot is not reissued. A query the
// driver reports as failed frees its slot without a sample.
func (m *Manager) BeginFrame(cfg Config, frameID uint32, vsync time.Time) {
	if m.terminated {
		panic(ErrTerminated)
	}
	cfg = cfg.normalized()

	if s := &m.pool[m.last]; s.state == slotWaiting {
		if elapsed, ok := m.queries.TimerQueryValue(s.query); ok {
			m.retire(s)
			m.stats.Retired++
			m.update(cfg, FrameInfo{FrameID: s.frameID, Vsync: s.vsync, Duration: elapsed})
		} else if m.failures != nil && m.failures.TimerQueryFailed(s.query) {
			m.retire(s)
			m.stats.Failed++
			slogger().Warn("frameinfo: timer query failed, frame not measured", "frame", s.frameID)
		}
	}

	s := &m.pool[m.index]
	switch s.state {
	case slotIdle:
		m.queries.BeginTimerQuery(s.query)
		s.state = slotRunning
		s.frameID = frameID
		s.vsync = vsync
		m.stats.Issued++
		m.stats.InFlight++
	case slotRunning:
		panic(fmt.Errorf("%w: frame %d", ErrFrameInProgress, s.frameID))
	default:
		m.stats.Skipped++
		slogger().Warn("frameinfo: all timer queries pending, frame not measured",
			"frame", frameID, "oldest", m.pool[m.last].frameID)
	}
}

// retire frees the oldest waiting slot.
func (m *Manager) retire(s *slot) {
	s.state = slotIdle
	m.last = (m.last + 1) % PoolCount
	m.stats.InFlight--
}

// EndFrame ends the query issued by the last BeginFrame and moves to the
// next pool slot. It does nothing for an unmeasured frame.
func (m *Manager) EndFrame() {
	if m.terminated {
		panic(ErrTerminated)
	}
	s := &m.pool[m.index]
	if s.state != slotRunning {
		return
	}
	m.queries.EndTimerQuery(s.query)
	s.state = slotWaiting
	m.index = (m.index + 1) % PoolCount
}

// update pushes a retrieved frame time and runs the controller.
func (m *Manager) update(cfg Config, info FrameInfo) {
	cur := m.history.PushFront(info)
	n := m.history.Len()
	if n < MinValidSamples {
		return
	}

	size := min(cfg.HistorySize, n, MaxFrameTimeHistory)
	scratch := m.scratch[:size]
	for i := range scratch {
		scratch[i] = m.history.At(i).Duration
	}
	slices.Sort(scratch)
	cur.Denoised = scratch[size/2]

	target := cfg.TargetFrameTime.Seconds() * (1 - cfg.HeadRoomRatio)
	e := -1.0
	if target > 0 {
		e = (target - cur.Denoised.Seconds()) / target
	}

	// Kd is fixed at 0: this is a PI controller.
	const kd = 0.0
	kp := 1 - math.Exp(-cfg.OneOverTau)
	ki := kp / 10

	prev := m.history.At(1)
	cur.PID.Error = e
	cur.PID.Integral = clamp(prev.PID.Integral+ki*e, IntegralMin, IntegralMax)
	cur.PID.Derivative = e - prev.PID.Error

	out := kp*cur.PID.Error + cur.PID.Integral + kd*cur.PID.Derivative
	cur.Scale = math.Exp2(out)
	cur.Valid = true

	slogger().Debug("frameinfo: sample",
		"frame", cur.FrameID,
		"duration", cur.Duration,
		"denoised", cur.Denoised,
		"error", cur.PID.Error,
		"integral", cur.PID.Integral,
		"scale", cur.Scale)
}

// LastFrameInfo returns the newest sample, or the zero FrameInfo when no
// query result has been retrieved yet.
func (m *Manager) LastFrameInfo() FrameInfo {
	if f := m.history.Front(); f != nil {
		return *f
	}
	return FrameInfo{}
}

// History returns up to n samples, newest first. A non-positive n returns
// the whole history.
func (m *Manager) History(n int) []FrameInfo {
	if n <= 0 || n > m.history.Len() {
		n = m.history.Len()
	}
	out := make([]FrameInfo, n)
	for i := range out {
		out[i] = *m.history.At(i)
	}
	return out
}

// Stats returns the query pool counters.
func (m *Manager) Stats() Stats { return m.stats }

// Terminate destroys the query pool. It panics with ErrFrameInProgress if
// a frame was begun and not ended. Queries still waiting for the GPU are
// abandoned: a timer query cannot be drained without blocking, so their
// results are dropped and logged at Warn level. Calling Terminate more than
// once is a no-op.
func (m *Manager) Terminate() {
	if m.terminated {
		return
	}
	if s := m.pool[m.index]; s.state == slotRunning {
		panic(fmt.Errorf("%w: frame %d at terminate", ErrFrameInProgress, s.frameID))
	}
	if m.stats.InFlight > 0 {
		slogger().Warn("frameinfo: abandoning pending timer queries",
			"pending", m.stats.InFlight, "oldest", m.pool[m.last].frameID)
	}
	for i := range m.pool {
		m.queries.DestroyTimerQuery(m.pool[i].query)
		m.pool[i] = slot{}
	}
	m.terminated = true
	slogger().Info("frameinfo: query pool released",
		"issued", m.stats.Issued, "retired", m.stats.Retired, "skipped", m.stats.Skipped, "failed", m.stats.Failed)
	m.stats.InFlight = 0
}
