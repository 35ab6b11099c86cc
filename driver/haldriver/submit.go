package haldriver

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// submission keeps an encoder and its command buffer alive until the queue
// has executed it.
type submission struct {
	index uint64
	enc   hal.CommandEncoder
	cmd   hal.CommandBuffer
}

// submit records one command buffer and submits it. It returns the
// submission index to compare against Queue.PollCompleted.
func (d *Driver) submit(label string, record func(hal.CommandEncoder)) (uint64, error) {
	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return 0, fmt.Errorf("create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		enc.Destroy()
		return 0, fmt.Errorf("begin encoding: %w", err)
	}
	record(enc)
	cmd, err := enc.EndEncoding()
	if err != nil {
		enc.Destroy()
		return 0, fmt.Errorf("end encoding: %w", err)
	}
	index, err := d.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		d.device.FreeCommandBuffer(cmd)
		enc.Destroy()
		return 0, fmt.Errorf("submit: %w", err)
	}
	d.inflight = append(d.inflight, submission{index: index, enc: enc, cmd: cmd})
	return index, nil
}

// reclaim frees the command buffers the queue has completed, or all of them
// when all is set. The caller must have waited for the device to go idle
// before passing all.
func (d *Driver) reclaim(all bool) {
	done := d.queue.PollCompleted()
	n := 0
	for _, s := range d.inflight {
		if all || s.index <= done {
			d.device.FreeCommandBuffer(s.cmd)
			s.enc.Destroy()
			continue
		}
		d.inflight[n] = s
		n++
	}
	clear(d.inflight[n:])
	d.inflight = d.inflight[:n]
}
