package mixer

// Fake is an in-memory Backend. Callbacks run synchronously on the caller's
// goroutine. With Async set, SetMuted requests queue until FlushMutes.
type Fake struct {
	Async        bool
	SubscribeErr error
	MaxNorm      uint32

	Subscribes   int
	Unsubscribes int

	sources []*FakeStream
	def     *FakeStream
	apps    []RecordingApp
	subs    map[int]func(Event)
	nextSub int
	queued  []func()
	closed  bool
}

func NewFake() *Fake {
	return &Fake{MaxNorm: 0x10000, subs: make(map[int]func(Event))}
}

type fakeSub struct {
	f    *Fake
	id   int
	done bool
}

func (s *fakeSub) Unsubscribe() {
	if s.done {
		return
	}
	s.done = true
	delete(s.f.subs, s.id)
	s.f.Unsubscribes++
}

func (f *Fake) Subscribe(fn func(Event)) (Subscription, error) {
	if f.SubscribeErr != nil {
		return nil, f.SubscribeErr
	}
	if f.closed {
		return nil, ErrClosed
	}
	f.nextSub++
	f.subs[f.nextSub] = fn
	f.Subscribes++
	return &fakeSub{f: f, id: f.nextSub}, nil
}

func (f *Fake) DefaultSource() Stream {
	if f.def == nil {
		return nil
	}
	return f.def
}

func (f *Fake) Sources() []Stream {
	out := make([]Stream, 0, len(f.sources))
	for _, s := range f.sources {
		out = append(out, s)
	}
	return out
}

func (f *Fake) RecordingApps() []RecordingApp {
	return append([]RecordingApp(nil), f.apps...)
}

func (f *Fake) VolumeMaxNorm() uint32 { return f.MaxNorm }

func (f *Fake) Close() { f.closed = true }

// LiveSubscriptions counts backend and stream subscriptions not yet released.
func (f *Fake) LiveSubscriptions() int {
	n := len(f.subs)
	for _, s := range f.sources {
		n += len(s.obs)
	}
	return n
}

// AddSource registers an input. The first one added becomes the default.
func (f *Fake) AddSource(name string, muted bool, volume uint32) *FakeStream {
	s := &FakeStream{f: f, name: name, muted: muted, volume: volume, obs: make(map[int]func())}
	f.sources = append(f.sources, s)
	if f.def == nil {
		f.def = s
		f.emit(Event{Kind: DefaultInputChanged})
	}
	return s
}

func (f *Fake) AddMonitor(name string) *FakeStream {
	s := &FakeStream{f: f, name: name, monitor: true, obs: make(map[int]func())}
	f.sources = append(f.sources, s)
	return s
}

// SetDefault changes the default input; nil unplugs it.
func (f *Fake) SetDefault(s *FakeStream) {
	f.def = s
	f.emit(Event{Kind: DefaultInputChanged})
}

func (f *Fake) AddApp(id string) {
	f.apps = append(f.apps, RecordingApp{ID: id, Name: id})
	f.emit(Event{Kind: StreamAdded, Index: uint32(len(f.apps))})
}

func (f *Fake) RemoveApp(id string) {
	for i, a := range f.apps {
		if a.ID == id {
			f.apps = append(f.apps[:i], f.apps[i+1:]...)
			f.emit(Event{Kind: StreamRemoved, Index: uint32(i + 1)})
			return
		}
	}
}

// FlushMutes applies queued mute requests.
func (f *Fake) FlushMutes() {
	q := f.queued
	f.queued = nil
	for _, fn := range q {
		fn()
	}
}

func (f *Fake) emit(ev Event) {
	for _, fn := range f.subs {
		fn(ev)
	}
}

type FakeStream struct {
	f       *Fake
	name    string
	muted   bool
	volume  uint32
	monitor bool

	obs     map[int]func()
	nextObs int

	MuteRequests int
	Subscribes   int
	Unsubscribes int
}

func (s *FakeStream) Name() string      { return s.name }
func (s *FakeStream) Muted() bool        { return s.muted }
func (s *FakeStream) Volume() uint32     { return s.volume }
func (s *FakeStream) Monitor() bool      { return s.monitor }
func (s *FakeStream) SetVolume(v uint32) { s.volume = v }

func (s *FakeStream) SetMuted(muted bool) {
	s.MuteRequests++
	apply := func() { s.setMuted(muted) }
	if s.f.Async {
		s.f.queued = append(s.f.queued, apply)
		return
	}
	apply()
}

// ServerSetMuted changes the flag as if another client had done it.
func (s *FakeStream) ServerSetMuted(muted bool) { s.setMuted(muted) }

func (s *FakeStream) setMuted(muted bool) {
	if s.muted == muted {
		return
	}
	s.muted = muted
	for _, fn := range s.obs {
		fn()
	}
}

func (s *FakeStream) OnMuteChanged(fn func()) func() {
	s.nextObs++
	id := s.nextObs
	s.obs[id] = fn
	s.Subscribes++
	released := false
	return func() {
		if released {
			return
		}
		released = true
		delete(s.obs, id)
		s.Unsubscribes++
	}
}
