// Package beep plays the short "on" and "off" cues after a toggle.
package beep

import (
	"math"
	"sync"

	"micmute/log"
)

const (
	sampleRate = 44100
	channels   = 2

	// On cue: high pitch, snappy
	onFreq   = 1200
	onVolume = 0.5
	onDecay  = 60

	// Off cue: lower pitch, slightly longer tail
	offFreq   = 900
	offVolume = 0.5
	offDecay  = 40

	// 200ms leaves room for the server to fill its buffer.
	cueDuration = 0.2
)

type Options struct {
	// FLAC files replacing the built-in cues. Empty keeps the default.
	OnFile  string
	OffFile string
}

// Cue is interleaved stereo int16 at 44.1kHz.
type Cue struct {
	Name    string
	Samples []int16
	p       *Player
}

// Play restarts the cue from the beginning, cutting off whatever is playing.
func (c *Cue) Play() {
	if c.p != nil {
		c.p.play(c)
	}
}

// output plays one sound at a time. play stops the current sound first.
type output interface {
	play(samples []int16) error
	close()
}

type Player struct {
	on, off *Cue
	out     output
	reqs    chan *Cue
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func New(opts Options) (*Player, error) {
	out, err := newOutput()
	if err != nil {
		return nil, err
	}
	return newPlayer(opts, out)
}

func newPlayer(opts Options, out output) (*Player, error) {
	p := &Player{
		out:  out,
		reqs: make(chan *Cue, 1),
		done: make(chan struct{}),
	}
	var err error
	if p.on, err = loadCue("on", opts.OnFile, onFreq, onVolume, onDecay); err != nil {
		out.close()
		return nil, err
	}
	if p.off, err = loadCue("off", opts.OffFile, offFreq, offVolume, offDecay); err != nil {
		out.close()
		return nil, err
	}
	p.on.p = p
	p.off.p = p

	p.wg.Add(1)
	go p.run()
	return p, nil
}

func loadCue(name, path string, freq, volume, decay float64) (*Cue, error) {
	if path == "" {
		return &Cue{Name: name, Samples: generateTick(sampleRate, freq, cueDuration, volume, decay)}, nil
	}
	samples, err := DecodeFLAC(path)
	if err != nil {
		return nil, err
	}
	return &Cue{Name: name, Samples: samples}, nil
}

func (p *Player) On() *Cue  { return p.on }
func (p *Player) Off() *Cue { return p.off }

// play never blocks. A cue requested while another is queued replaces it.
func (p *Player) play(c *Cue) {
	select {
	case <-p.done:
		return
	default:
	}
	select {
	case <-p.reqs:
	default:
	}
	select {
	case p.reqs <- c:
	default:
	}
}

func (p *Player) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case c := <-p.reqs:
			if err := p.out.play(c.Samples); err != nil {
				log.Warnf("play %s cue: %v", c.Name, err)
			}
		}
	}
}

func (p *Player) Close() {
	p.once.Do(func() {
		close(p.done)
		p.wg.Wait()
		p.out.close()
	})
}

func generateTick(sampleRate int, freq float64, duration float64, volume float64, decay float64) []int16 {
	n := int(float64(sampleRate) * duration)
	samples := make([]int16, n*channels)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		envelope := math.Exp(-t * decay)
		s := int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
		samples[i*2] = s   // left
		samples[i*2+1] = s // right
	}
	return samples
}
