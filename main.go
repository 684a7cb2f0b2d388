package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"micmute/beep"
	"micmute/config"
	"micmute/doctor"
	"micmute/hotkey"
	"micmute/log"
	"micmute/login"
	"micmute/loop"
	"micmute/metrics"
	"micmute/mixer"
	"micmute/osd"
	"micmute/shutdown"
	"micmute/tray"
)

var version = "dev"

type rootFlags struct {
	config      string
	logpath     string
	server      string
	accel       string
	metricsAddr string
	tui         bool
	noTray      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	run := func(cmd *cobra.Command, _ []string) error { return runApp(cmd, f) }

	root := &cobra.Command{
		Use:   "micmute",
		Short: "Microphone mute indicator with a push-to-talk hotkey",
		Long: `micmute shows the state of the default microphone in the system tray
and toggles its mute flag from a global shortcut. Holding the shortcut keeps
the microphone open; releasing it mutes again after a short delay.`,
		SilenceUsage: true,
		RunE:         run,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "settings file (default: user config dir/micmute/settings.yaml)")
	pf.StringVar(&f.logpath, "logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	pf.StringVar(&f.server, "server", "", "PulseAudio server address (default: from the environment)")
	pf.StringVar(&f.accel, "accel", "", "toggle shortcut in GTK syntax, e.g. <Super>grave")
	pf.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	pf.BoolVar(&f.tui, "tui", true, "show a status view when stdout is a terminal")
	pf.BoolVar(&f.noTray, "no-tray", false, "run without a tray icon")

	root.AddCommand(
		&cobra.Command{Use: "run", Short: "Run the indicator (default)", RunE: run},
		newDoctorCmd(f),
		newAutostartCmd(),
		newSoundsCmd(),
		newVersionCmd(),
	)
	return root
}

// loadSettings reads the settings file and applies flag overrides.
func loadSettings(cmd *cobra.Command, f *rootFlags) (config.Settings, string, error) {
	path := f.config
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Settings{}, "", err
		}
		path = p
	}
	s, err := config.Load(path)
	if err != nil {
		return config.Settings{}, "", err
	}
	s, err = overrideSettings(cmd, f, s)
	return s, path, err
}

func overrideSettings(cmd *cobra.Command, f *rootFlags, s config.Settings) (config.Settings, error) {
	flags := cmd.Flags()
	if flags.Changed("accel") {
		s.Keybinding = f.accel
	}
	if flags.Changed("metrics-addr") {
		s.MetricsAddr = f.metricsAddr
	}
	if err := s.Validate(); err != nil {
		return config.Settings{}, err
	}
	return s, nil
}

func setupLogging(flagPath string) {
	dir, err := log.ResolveDir(flagPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to resolve log directory: %v\n", err)
		return
	}
	log.SetDir(dir)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
		return
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	if crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
}

// forwardTriggers posts toggle to the loop for every hotkey trigger until ctx
// is done.
func forwardTriggers(ctx context.Context, hk hotkey.Hotkey, post func(func()) bool, toggle func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-hk.Triggers():
			post(toggle)
		}
	}
}

// binding owns the registered shortcut and the goroutine forwarding it.
// After the first bind its methods run on the loop goroutine.
type binding struct {
	ctx    context.Context
	newKey func(hotkey.Accelerator) hotkey.Hotkey
	post   func(func()) bool
	toggle func()

	hk     hotkey.Hotkey
	cancel context.CancelFunc
}

// bind registers accel and then releases the previous shortcut. On error the
// previous shortcut stays live.
func (b *binding) bind(accel hotkey.Accelerator) error {
	hk := b.newKey(accel)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register %s: %w", accel, err)
	}
	b.release()
	ctx, cancel := context.WithCancel(b.ctx)
	b.hk, b.cancel = hk, cancel
	go forwardTriggers(ctx, hk, b.post, b.toggle)
	return nil
}

func (b *binding) rebind(keybinding string) error {
	accel, err := hotkey.Parse(keybinding)
	if err != nil {
		return err
	}
	return b.bind(accel)
}

func (b *binding) release() {
	if b.hk == nil {
		return
	}
	b.cancel()
	b.hk.Unregister()
	b.hk = nil
}

// toastDisplay mirrors every notification into the status view.
type toastDisplay struct {
	osd.Display
}

func (d toastDisplay) Show(text string, muted bool, level float64) {
	d.Display.Show(text, muted, level)
	tuiSend(ToastMsg{Text: osd.Summary(text, muted)})
}

func runApp(cmd *cobra.Command, f *rootFlags) error {
	s, path, err := loadSettings(cmd, f)
	if err != nil {
		return err
	}
	accel, err := hotkey.Parse(s.Keybinding)
	if err != nil {
		return err
	}

	setupLogging(f.logpath)
	defer log.Close()

	ctx, stop := shutdown.Context(context.Background())
	defer stop()

	// The loop outlives ctx so teardown can still run on it.
	l := loop.New()
	loopCtx, stopLoop := context.WithCancel(context.Background())
	go l.Run(loopCtx)
	defer func() {
		stopLoop()
		<-l.Done()
	}()

	backend, err := mixer.NewPulse(f.server, func(fn func()) { l.Post(fn) })
	if err != nil {
		log.Errorf("audio server: %v", err)
		return err
	}

	var app *App
	keys := &binding{
		ctx:    ctx,
		newKey: hotkey.New,
		post:   l.Post,
		toggle: func() { app.Toggle(PathHotkey) },
	}
	deps := Deps{Backend: backend, Scheduler: l, Rebind: keys.rebind}

	display, err := osd.New()
	if err != nil {
		log.Warnf("notifications disabled: %v", err)
		display = osd.Nop{}
	}
	useTUI := f.tui && term.IsTerminal(int(os.Stdout.Fd()))
	if useTUI {
		deps.Display = toastDisplay{display}
		deps.OnStatus = func(st Status) { tuiSend(StatusMsg(st)) }
	} else {
		deps.Display = display
	}

	player, err := beep.New(beep.Options{OnFile: s.SoundOnFile, OffFile: s.SoundOffFile})
	if err != nil {
		log.Warnf("feedback sounds disabled: %v", err)
	} else {
		deps.OnCue = player.On()
		deps.OffCue = player.Off()
		deps.CloseSounds = player.Close
	}

	if s.MetricsAddr != "" {
		m := metrics.New()
		addr, err := m.Serve(ctx, s.MetricsAddr)
		if err != nil {
			log.Errorf("metrics: %v", err)
			return err
		}
		log.Infof("metrics listening on http://%s/metrics", addr)
		deps.Metrics = m
	}

	if !f.noTray {
		deps.Tray = tray.SetState
		deps.QuitTray = tray.Quit
	}

	if doErr := l.Do(ctx, func() { app, err = NewApp(s, deps) }); doErr != nil {
		return doErr
	}
	if err != nil {
		log.Errorf("start: %v", err)
		backend.Close()
		display.Close()
		if player != nil {
			player.Close()
		}
		return err
	}
	closeApp := func() int {
		var toggles int
		l.Do(context.Background(), func() {
			toggles = app.Toggles()
			app.Close()
		})
		return toggles
	}

	if err := keys.bind(accel); err != nil {
		log.Errorf("hotkey register error: %v", err)
		closeApp()
		return err
	}

	watcher, err := config.Watch(path, func(reloaded config.Settings, err error) {
		if err == nil {
			reloaded, err = overrideSettings(cmd, f, reloaded)
		}
		if err != nil {
			log.Warnf("settings reload: %v", err)
			return
		}
		log.Infof("settings reloaded from %s", path)
		l.Post(func() { app.ApplySettings(reloaded) })
	})
	if err != nil {
		log.Warnf("settings will not reload: %v", err)
	}

	var source string
	l.Do(ctx, func() { source = app.Status().Source })
	log.SessionStart("pulse", accel.String(), source)

	if useTUI {
		p := NewTUIProgram(func() { l.Post(func() { app.Toggle(PathTUI) }) })
		tuiMu.Lock()
		tuiProgram = p
		tuiMu.Unlock()
		l.Post(func() { tuiSend(StatusMsg(app.Status())) })
		go func() {
			if _, err := p.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
			}
			stop()
		}()
	}

	if f.noTray {
		headless(func() { <-ctx.Done() })
	} else {
		tray.OnToggle(func() { l.Post(func() { app.Toggle(PathTray) }) })
		tray.OnQuit(stop)
		go func() {
			<-ctx.Done()
			tray.Quit()
		}()
		tray.Run(nil)
	}

	stop()
	if watcher != nil {
		watcher.Close()
	}
	l.Do(context.Background(), keys.release)
	tuiMu.Lock()
	if tuiProgram != nil {
		tuiProgram.Quit()
	}
	tuiMu.Unlock()
	log.SessionEnd(closeApp())
	return nil
}

func newDoctorCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run interactive system diagnostics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, path, err := loadSettings(cmd, f)
			if err != nil {
				return err
			}
			accel, err := hotkey.Parse(s.Keybinding)
			if err != nil {
				return err
			}
			os.Exit(doctor.Run(doctor.Options{
				ConfigPath: path,
				Server:     f.server,
				Accel:      accel,
				Sounds:     beep.Options{OnFile: s.SoundOnFile, OffFile: s.SoundOffFile},
			}))
			return nil
		},
	}
}

func newAutostartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Start micmute when you log in",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Start micmute at login",
			RunE: func(*cobra.Command, []string) error {
				if err := login.Enable(); err != nil {
					return err
				}
				fmt.Println("Autostart enabled.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Stop starting micmute at login",
			RunE: func(*cobra.Command, []string) error {
				if err := login.Disable(); err != nil {
					return err
				}
				fmt.Println("Autostart disabled.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show whether autostart is enabled",
			Run: func(*cobra.Command, []string) {
				if login.Enabled() {
					fmt.Println("enabled")
				} else {
					fmt.Println("disabled")
				}
			},
		},
	)
	return cmd
}

func newSoundsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sounds",
		Short: "Manage the feedback cues",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "export DIR",
		Short: "Write the built-in cues as FLAC files for editing",
		Long: `Write the built-in on and off cues as FLAC files. Point sound-on-file and
sound-off-file at edited copies to replace them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			paths, err := beep.Export(args[0])
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Println(p)
			}
			return nil
		},
	})
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Show version information",
		Run: func(*cobra.Command, []string) {
			fmt.Printf("micmute %s\n", version)
			fmt.Printf("  OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Printf("  Go: %s\n", runtime.Version())
		},
	}
}
