package haldriver

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
	"unsafe"

	"github.com/gogpu/framepace/driver"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// timestampBytes holds the begin and end timestamps.
const timestampBytes = 2 * 8

// errTimestampOrder reports an end timestamp earlier than the begin one.
var errTimestampOrder = errors.New("end timestamp precedes begin")

type queryState uint8

const (
	queryIdle queryState = iota
	queryRunning
	queryWaiting
	queryReady
	queryFailed
)

type timerQuery struct {
	// GPU timestamp resources. set is nil when timing on the CPU.
	set      hal.QuerySet
	resolve  hal.Buffer
	readback hal.Buffer

	state   queryState
	begun   time.Time
	index   uint64 // end submission
	elapsed time.Duration
}

// CreateTimerQuery allocates a timer query.
func (d *Driver) CreateTimerQuery() (driver.TimerQueryHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, driver.ErrClosed
	}

	q := &timerQuery{}
	if d.timestamps {
		if err := d.createTimestamps(q); err != nil {
			if !errors.Is(err, hal.ErrTimestampsNotSupported) {
				return 0, fmt.Errorf("haldriver: create timer query: %w", err)
			}
			d.timestamps = false
			slogger().Info("haldriver: GPU timestamps unavailable, timing submissions on the CPU")
		}
	}
	h := driver.TimerQueryHandle(d.handle())
	d.queries[h] = q
	return h, nil
}

func (d *Driver) createTimestamps(q *timerQuery) error {
	set, err := d.device.CreateQuerySet(&hal.QuerySetDescriptor{
		Label: "framepace_timer",
		Type:  hal.QueryTypeTimestamp,
		Count: 2,
	})
	if err != nil {
		return err
	}
	resolve, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "framepace_timer_resolve",
		Size:  timestampBytes,
		Usage: gputypes.BufferUsageQueryResolve | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		d.device.DestroyQuerySet(set)
		return fmt.Errorf("create resolve buffer: %w", err)
	}
	readback, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "framepace_timer_readback",
		Size:  timestampBytes,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		d.device.DestroyBuffer(resolve)
		d.device.DestroyQuerySet(set)
		return fmt.Errorf("create readback buffer: %w", err)
	}
	q.set, q.resolve, q.readback = set, resolve, readback
	return nil
}

func (d *Driver) destroyQuery(q *timerQuery) {
	if q.set == nil {
		return
	}
	d.device.DestroyBuffer(q.readback)
	d.device.DestroyBuffer(q.resolve)
	d.device.DestroyQuerySet(q.set)
}

func (d *Driver) mustQuery(h driver.TimerQueryHandle) *timerQuery {
	q, ok := d.queries[h]
	if !ok {
		panic(fmt.Errorf("haldriver: %w: %v", driver.ErrInvalidHandle, h))
	}
	return q
}

// DestroyTimerQuery releases a timer query. Commands already submitted for
// it complete before its resources are destroyed.
func (d *Driver) DestroyTimerQuery(h driver.TimerQueryHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	q := d.mustQuery(h)
	delete(d.queries, h)
	if q.set != nil && q.state == queryWaiting {
		if err := d.device.WaitIdle(); err != nil {
			slogger().Warn("haldriver: wait idle", "query", h, "err", err)
		}
	}
	d.destroyQuery(q)
}

// BeginTimerQuery writes the begin timestamp. A pending result is
// discarded.
func (d *Driver) BeginTimerQuery(h driver.TimerQueryHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	q := d.mustQuery(h)
	d.reclaim(false)

	q.state = queryRunning
	q.begun = d.now()
	q.index = 0
	q.elapsed = 0
	if q.set == nil {
		return
	}
	_, err := d.submit("framepace_timer_begin", func(enc hal.CommandEncoder) {
		writeTimestamp(enc, q.set, 0)
	})
	if err != nil {
		d.fail(h, q, err)
	}
}

// EndTimerQuery writes the end timestamp and schedules its readback.
func (d *Driver) EndTimerQuery(h driver.TimerQueryHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	q := d.mustQuery(h)
	if q.state != queryRunning {
		return
	}
	index, err := d.submit("framepace_timer_end", func(enc hal.CommandEncoder) {
		if q.set == nil {
			return
		}
		writeTimestamp(enc, q.set, 1)
		enc.ResolveQuerySet(q.set, 0, 2, q.resolve, 0)
		enc.CopyBufferToBuffer(q.resolve, q.readback, []hal.BufferCopy{{Size: timestampBytes}})
	})
	if err != nil {
		d.fail(h, q, err)
		return
	}
	q.index = index
	q.state = queryWaiting
	d.poll(h, q)
}

// TimerQueryValue returns the elapsed time once the end submission has
// completed. It never blocks.
func (d *Driver) TimerQueryValue(h driver.TimerQueryHandle) (time.Duration, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	q := d.mustQuery(h)
	if !d.poll(h, q) {
		return 0, false
	}
	return q.elapsed, true
}

func (d *Driver) poll(h driver.TimerQueryHandle, q *timerQuery) bool {
	switch q.state {
	case queryReady:
		return true
	case queryWaiting:
	default:
		return false
	}
	if d.queue.PollCompleted() < q.index {
		return false
	}
	if q.set == nil {
		q.elapsed = d.now().Sub(q.begun)
	} else {
		elapsed, err := d.readTimestamps(q)
		if err != nil {
			d.fail(h, q, err)
			return false
		}
		q.elapsed = elapsed
	}
	q.state = queryReady
	return true
}

func (d *Driver) readTimestamps(q *timerQuery) (time.Duration, error) {
	m, err := d.device.MapBuffer(q.readback, 0, timestampBytes)
	if err != nil {
		return 0, fmt.Errorf("map timestamps: %w", err)
	}
	b := unsafe.Slice((*byte)(m.Ptr), timestampBytes)
	t0 := binary.LittleEndian.Uint64(b[0:8])
	t1 := binary.LittleEndian.Uint64(b[8:16])
	if err := d.device.UnmapBuffer(q.readback); err != nil {
		return 0, fmt.Errorf("unmap timestamps: %w", err)
	}
	if t1 < t0 {
		return 0, fmt.Errorf("%w: %d < %d", errTimestampOrder, t1, t0)
	}
	return time.Duration(float64(t1-t0) * d.period), nil
}

// TimerQueryFailed reports whether the last begin/end pair of h failed to
// submit or read back. A failed query stays failed until its next
// BeginTimerQuery.
func (d *Driver) TimerQueryFailed(h driver.TimerQueryHandle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	q := d.mustQuery(h)
	d.poll(h, q)
	return q.state == queryFailed
}

// fail parks a query until its next BeginTimerQuery. TimerQueryFailed
// reports it so callers stop waiting for its value.
func (d *Driver) fail(h driver.TimerQueryHandle, q *timerQuery, err error) {
	q.state = queryFailed
	slogger().Warn("haldriver: timer query failed", "query", h, "err", err)
}

func writeTimestamp(enc hal.CommandEncoder, set hal.QuerySet, index uint32) {
	writes := &hal.ComputePassTimestampWrites{QuerySet: set}
	if index == 0 {
		writes.BeginningOfPassWriteIndex = &index
	} else {
		writes.EndOfPassWriteIndex = &index
	}
	enc.BeginComputePass(&hal.ComputePassDescriptor{
		Label:           "framepace_timestamp",
		TimestampWrites: writes,
	}).End()
}
