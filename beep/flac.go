package beep

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

const (
	blockSize     = 4096
	bitsPerSample = 16
)

var ErrSampleRate = errors.New("cue must be 44100 Hz")

// DecodeFLAC reads a cue file into interleaved stereo int16. Mono files are
// duplicated to both channels; channels past the second are dropped.
func DecodeFLAC(path string) ([]int16, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer stream.Close()

	info := stream.Info
	if info.SampleRate != sampleRate {
		return nil, fmt.Errorf("%s: %d Hz: %w", path, info.SampleRate, ErrSampleRate)
	}
	shift := int(info.BitsPerSample) - bitsPerSample

	var out []int16
	for {
		f, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		left := f.Subframes[0].Samples
		right := left
		if len(f.Subframes) > 1 {
			right = f.Subframes[1].Samples
		}
		for i := 0; i < int(f.BlockSize); i++ {
			out = append(out, toInt16(left[i], shift), toInt16(right[i], shift))
		}
	}
	return out, nil
}

func toInt16(s int32, shift int) int16 {
	if shift > 0 {
		s >>= shift
	} else if shift < 0 {
		s <<= -shift
	}
	return int16(s)
}

// EncodeFLAC writes interleaved stereo int16 samples as a 16-bit FLAC stream.
func EncodeFLAC(w io.Writer, samples []int16) error {
	return encodeFLAC(w, samples, sampleRate)
}

func encodeFLAC(w io.Writer, samples []int16, rate uint32) error {
	info := &meta.StreamInfo{
		BlockSizeMin:  blockSize,
		BlockSizeMax:  blockSize,
		SampleRate:    rate,
		NChannels:     channels,
		BitsPerSample: bitsPerSample,
		NSamples:      uint64(len(samples) / channels),
	}
	enc, err := flac.NewEncoder(w, info)
	if err != nil {
		return fmt.Errorf("creating flac encoder: %w", err)
	}

	frames := len(samples) / channels
	for start := 0; start < frames; start += blockSize {
		end := start + blockSize
		if end > frames {
			end = frames
		}
		n := end - start
		left := make([]int32, n)
		right := make([]int32, n)
		for i := 0; i < n; i++ {
			left[i] = int32(samples[(start+i)*2])
			right[i] = int32(samples[(start+i)*2+1])
		}

		f := &frame.Frame{
			Header: frame.Header{
				BlockSize:     uint16(n),
				SampleRate:    rate,
				Channels:      frame.ChannelsLR,
				BitsPerSample: bitsPerSample,
			},
			Subframes: []*frame.Subframe{verbatim(left), verbatim(right)},
		}
		if err := enc.WriteFrame(f); err != nil {
			enc.Close()
			return fmt.Errorf("writing flac frame: %w", err)
		}
	}
	return enc.Close()
}

func verbatim(samples []int32) *frame.Subframe {
	return &frame.Subframe{
		SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
		Samples:   samples,
		NSamples:  len(samples),
	}
}

// Export writes the built-in cues to dir as on.flac and off.flac, a starting
// point for sound-on-file and sound-off-file.
func Export(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	cues := []*Cue{
		{Name: "on", Samples: generateTick(sampleRate, onFreq, cueDuration, onVolume, onDecay)},
		{Name: "off", Samples: generateTick(sampleRate, offFreq, cueDuration, offVolume, offDecay)},
	}
	var paths []string
	for _, c := range cues {
		var buf bytes.Buffer
		if err := EncodeFLAC(&buf, c.Samples); err != nil {
			return paths, fmt.Errorf("%s cue: %w", c.Name, err)
		}
		path := filepath.Join(dir, c.Name+".flac")
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
