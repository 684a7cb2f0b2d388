package mixer

import (
	"fmt"
	"net"
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"

	"micmute/log"
)

// SubscriptionMaskSourceInput is the source-output bit despite its name.
const subscribeMask = proto.SubscriptionMaskSource | proto.SubscriptionMaskSourceInput | proto.SubscriptionMaskServer

const appName = "micmute"

// Pulse is a Backend talking to a PulseAudio (or pipewire-pulse) server.
//
// Two connections are used: client issues requests, events only carries the
// subscription. Events arrive on the protocol reader goroutine and are handed
// to post, which must run them on the goroutine that owns the backend.
type Pulse struct {
	client *pulse.Client
	events *proto.Client
	conn   net.Conn
	server string
	post   func(func())

	// owned by the post goroutine
	sources map[uint32]*pulseSource
	subs    map[int]func(Event)
	nextSub int

	closeOnce sync.Once
	closed    bool
}

func NewPulse(server string, post func(func())) (*Pulse, error) {
	opts := []pulse.ClientOption{pulse.ClientApplicationName(appName)}
	if server != "" {
		opts = append(opts, pulse.ClientServerString(server))
	}
	client, err := pulse.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	return &Pulse{
		client:  client,
		server:  server,
		post:    post,
		sources: make(map[uint32]*pulseSource),
		subs:    make(map[int]func(Event)),
	}, nil
}

type pulseSub struct {
	p    *Pulse
	id   int
	done bool
}

func (s *pulseSub) Unsubscribe() {
	if s.done {
		return
	}
	s.done = true
	delete(s.p.subs, s.id)
}

// Subscribe opens the event connection on first use.
func (p *Pulse) Subscribe(fn func(Event)) (Subscription, error) {
	if p.closed {
		return nil, ErrClosed
	}
	if p.events == nil {
		if err := p.connectEvents(); err != nil {
			return nil, err
		}
	}
	p.nextSub++
	p.subs[p.nextSub] = fn
	return &pulseSub{p: p, id: p.nextSub}, nil
}

func (p *Pulse) connectEvents() error {
	c, conn, err := proto.Connect(p.server)
	if err != nil {
		return fmt.Errorf("pulse events: %w", err)
	}
	c.Callback = func(msg interface{}) {
		ev, ok := msg.(*proto.SubscribeEvent)
		if !ok {
			return
		}
		kind, index := ev.Event, ev.Index
		p.post(func() { p.dispatch(kind, index) })
	}
	props := proto.PropList{
		"application.name": proto.PropListString(appName + " events"),
	}
	if err := c.Request(&proto.SetClientName{Props: props}, &proto.SetClientNameReply{}); err != nil {
		conn.Close()
		return fmt.Errorf("pulse events: set client name: %w", err)
	}
	if err := c.Request(&proto.Subscribe{Mask: subscribeMask}, nil); err != nil {
		conn.Close()
		return fmt.Errorf("pulse events: subscribe: %w", err)
	}
	p.events = c
	p.conn = conn
	return nil
}

// dispatch runs on the post goroutine.
func (p *Pulse) dispatch(ev proto.SubscriptionEventType, index uint32) {
	if p.closed {
		return
	}
	kind := ev.GetType()
	switch ev.GetFacility() {
	case proto.EventServer:
		p.emit(Event{Kind: DefaultInputChanged, Index: index})
	case proto.EventSinkSourceOutput:
		switch kind {
		case proto.EventNew:
			p.emit(Event{Kind: StreamAdded, Index: index})
		case proto.EventRemove:
			p.emit(Event{Kind: StreamRemoved, Index: index})
		}
	case proto.EventSource:
		switch kind {
		case proto.EventChange:
			if s, ok := p.sources[index]; ok {
				s.refresh()
			}
		case proto.EventNew:
			p.emit(Event{Kind: StreamAdded, Index: index})
		case proto.EventRemove:
			delete(p.sources, index)
			p.emit(Event{Kind: StreamRemoved, Index: index})
		}
	}
}

func (p *Pulse) emit(ev Event) {
	for _, fn := range p.subs {
		fn(ev)
	}
}

func (p *Pulse) DefaultSource() Stream {
	if p.closed {
		return nil
	}
	var server proto.GetServerInfoReply
	if err := p.client.RawRequest(&proto.GetServerInfo{}, &server); err != nil {
		log.Warnf("pulse server info: %v", err)
		return nil
	}
	if server.DefaultSourceName == "" {
		return nil
	}
	var info proto.GetSourceInfoReply
	err := p.client.RawRequest(&proto.GetSourceInfo{
		SourceIndex: proto.Undefined,
		SourceName:  server.DefaultSourceName,
	}, &info)
	if err != nil {
		// Default points at a source that just went away.
		return nil
	}
	return p.track(&info)
}

func (p *Pulse) Sources() []Stream {
	if p.closed {
		return nil
	}
	var list proto.GetSourceInfoListReply
	if err := p.client.RawRequest(&proto.GetSourceInfoList{}, &list); err != nil {
		log.Warnf("pulse list sources: %v", err)
		return nil
	}
	out := make([]Stream, 0, len(list))
	for _, info := range list {
		out = append(out, p.track(info))
	}
	return out
}

func (p *Pulse) RecordingApps() []RecordingApp {
	if p.closed {
		return nil
	}
	var list proto.GetSourceOutputInfoListReply
	if err := p.client.RawRequest(&proto.GetSourceOutputInfoList{}, &list); err != nil {
		log.Warnf("pulse list source outputs: %v", err)
		return nil
	}
	apps := make([]RecordingApp, 0, len(list))
	for _, out := range list {
		apps = append(apps, recordingApp(out.Properties))
	}
	return apps
}

func recordingApp(props proto.PropList) RecordingApp {
	app := RecordingApp{}
	if v, ok := props["application.name"]; ok {
		app.Name = v.String()
	}
	if v, ok := props["application.id"]; ok {
		app.ID = v.String()
	}
	if app.ID == "" {
		app.ID = app.Name
	}
	return app
}

func (p *Pulse) VolumeMaxNorm() uint32 { return uint32(proto.VolumeNorm) }

func (p *Pulse) Close() {
	p.closeOnce.Do(func() {
		p.closed = true
		if p.conn != nil {
			p.conn.Close()
		}
		p.client.Close()
		p.subs = nil
		p.sources = nil
	})
}

// track returns the cached source for info's index, updating its state.
// Observers stay attached across lookups.
func (p *Pulse) track(info *proto.GetSourceInfoReply) *pulseSource {
	s, ok := p.sources[info.SourceIndex]
	if !ok {
		s = &pulseSource{p: p, index: info.SourceIndex, obs: make(map[int]func())}
		p.sources[info.SourceIndex] = s
	}
	s.update(info)
	return s
}

type pulseSource struct {
	p       *Pulse
	index   uint32
	name    string
	muted   bool
	volume  uint32
	monitor bool

	obs     map[int]func()
	nextObs int
}

func (s *pulseSource) Name() string   { return s.name }
func (s *pulseSource) Muted() bool    { return s.muted }
func (s *pulseSource) Volume() uint32 { return s.volume }
func (s *pulseSource) Monitor() bool  { return s.monitor }

func (s *pulseSource) SetMuted(muted bool) {
	if s.p.closed {
		return
	}
	err := s.p.client.RawRequest(&proto.SetSourceMute{
		SourceIndex: s.index,
		Mute:        muted,
	}, nil)
	if err != nil {
		log.Warnf("pulse set mute on %s: %v", s.name, err)
	}
}

func (s *pulseSource) OnMuteChanged(fn func()) func() {
	s.nextObs++
	id := s.nextObs
	s.obs[id] = fn
	return func() { delete(s.obs, id) }
}

func (s *pulseSource) refresh() {
	var info proto.GetSourceInfoReply
	err := s.p.client.RawRequest(&proto.GetSourceInfo{SourceIndex: s.index}, &info)
	if err != nil {
		return
	}
	s.update(&info)
}

// update fires mute observers when the flag changed.
func (s *pulseSource) update(info *proto.GetSourceInfoReply) {
	wasMuted := s.muted
	known := s.name != ""

	s.name = info.SourceName
	s.muted = info.Mute
	s.volume = maxVolume(info.ChannelVolumes)
	if v, ok := info.Properties["device.class"]; ok {
		s.monitor = v.String() == "monitor"
	}

	if known && wasMuted != s.muted {
		for _, fn := range s.obs {
			fn()
		}
	}
}

func maxVolume(vols proto.ChannelVolumes) uint32 {
	var m uint32
	for _, v := range vols {
		if v > m {
			m = v
		}
	}
	return m
}
