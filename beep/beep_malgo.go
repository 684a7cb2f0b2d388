//go:build !linux

package beep

import (
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

type malgoOutput struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	mu     sync.Mutex

	// Playback state, read from the device callback.
	samples atomic.Pointer[[]byte]
	pos     atomic.Uint32
}

func newOutput() (output, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, err
	}
	o := &malgoOutput{ctx: ctx}
	if err := o.initDevice(); err != nil {
		ctx.Uninit()
		ctx.Free()
		return nil, err
	}
	return o, nil
}

func (o *malgoOutput) initDevice() error {
	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = channels
	config.SampleRate = sampleRate

	var err error
	o.device, err = malgo.InitDevice(o.ctx.Context, config, malgo.DeviceCallbacks{
		Data: o.data,
	})
	return err
}

func (o *malgoOutput) data(pOutput, _ []byte, frameCount uint32) {
	want := frameCount * channels * 2
	samples := o.samples.Load()
	var written uint32
	if samples != nil {
		pos := o.pos.Load()
		remaining := uint32(len(*samples)) - pos
		written = want
		if written > remaining {
			written = remaining
		}
		copy(pOutput[:written], (*samples)[pos:pos+written])
		o.pos.Store(pos + written)
		if remaining == written {
			o.samples.Store(nil)
		}
	}
	for i := written; i < want && int(i) < len(pOutput); i++ {
		pOutput[i] = 0
	}
}

func (o *malgoOutput) play(samples []int16) error {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	// Stop first so the callback never sees a half-reset position.
	o.device.Stop()
	o.pos.Store(0)
	o.samples.Store(&buf)

	if err := o.device.Start(); err != nil {
		// Recreate the device, this happens after sleep/wake on macOS.
		o.device.Uninit()
		if err := o.initDevice(); err != nil {
			o.samples.Store(nil)
			return err
		}
		if err := o.device.Start(); err != nil {
			o.samples.Store(nil)
			return err
		}
	}
	return nil
}

func (o *malgoOutput) close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.device != nil {
		o.device.Uninit()
		o.device = nil
	}
	o.ctx.Uninit()
	o.ctx.Free()
}
