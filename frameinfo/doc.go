// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package frameinfo estimates GPU frame time and derives a workload scale
// from it.
//
// A [Manager] issues one GPU timer query per frame from a pool of
// [PoolCount] queries and reads results back without blocking, typically a
// few frames later. Every retrieved duration is pushed into a history of
// [MaxFrameTimeHistory] samples, median filtered to reject single-frame
// spikes, and fed to a PI controller. The controller output is mapped to a
// multiplicative scale, 2^output, so that an output of -1 asks the renderer
// to halve its workload and +1 allows it to double.
//
// # Usage
//
//	m, err := frameinfo.NewManager(drv)
//	if err != nil {
//	    return err
//	}
//	defer m.Terminate()
//
//	cfg := frameinfo.DefaultConfig()
//	for id := uint32(0); ; id++ {
//	    m.BeginFrame(cfg, id, time.Now())
//	    // ... record GPU work ...
//	    m.EndFrame()
//
//	    if info := m.LastFrameInfo(); info.Valid {
//	        adjustQuality(info.Scale)
//	    }
//	}
//
// The first samples after startup are marked invalid until
// [MinValidSamples] durations are available. Consumers must tolerate
// invalid samples.
//
// # Thread Safety
//
// A Manager is driven from a single rendering goroutine and performs no
// locking.
package frameinfo
