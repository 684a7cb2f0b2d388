//go:build linux

package beep

import (
	"fmt"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

// pulseOutput keeps one client and at most one playback stream.
type pulseOutput struct {
	client *pulse.Client
	stream *pulse.PlaybackStream
}

func newOutput() (output, error) {
	c, err := pulse.NewClient(pulse.ClientApplicationName("micmute"))
	if err != nil {
		return nil, fmt.Errorf("pulse playback: %w", err)
	}
	return &pulseOutput{client: c}, nil
}

func (o *pulseOutput) play(samples []int16) error {
	o.stopCurrent()
	if len(samples) == 0 {
		return nil
	}

	pos := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if pos >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[pos:])
		pos += n
		return n, nil
	})
	stream, err := o.client.NewPlayback(reader,
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			// Cues play at half volume.
			half := uint32(proto.VolumeNorm) / 2
			p.ChannelVolumes = proto.ChannelVolumes{half, half}
		}),
	)
	if err != nil {
		return err
	}
	stream.Start()
	o.stream = stream
	return nil
}

func (o *pulseOutput) stopCurrent() {
	if o.stream == nil {
		return
	}
	o.stream.Stop()
	o.stream.Close()
	o.stream = nil
}

func (o *pulseOutput) close() {
	o.stopCurrent()
	o.client.Close()
}
