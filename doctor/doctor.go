// Package doctor runs interactive checks of everything micmute talks to.
package doctor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"micmute/beep"
	"micmute/config"
	"micmute/hotkey"
	"micmute/mic"
	"micmute/mixer"
	"micmute/osd"
	"micmute/shutdown"
)

type Options struct {
	ConfigPath string
	Server     string
	Accel      hotkey.Accelerator
	Sounds     beep.Options
}

type check struct {
	name string
	run  func(Options) bool
}

var checks = []check{
	{"Settings", checkSettings},
	{"Audio server", checkAudio},
	{"Notifications", checkNotifications},
	{"Hotkey", checkHotkey},
	{"Sounds", checkSounds},
}

// Run executes the checks in order and returns an exit code (0=all pass, 1=any fail).
// The hotkey and sound checks need someone at the keyboard.
func Run(opts Options) int {
	resetTerminal()
	finished := watchInterrupt()
	defer finished()

	fmt.Println("micmute doctor - interactive system diagnostics")
	fmt.Println("================================================")

	allPass := true
	for i, c := range checks {
		fmt.Println()
		fmt.Printf("[%d/%d] %s\n", i+1, len(checks), c.name)
		if !c.run(opts) {
			allPass = false
		}
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

// watchInterrupt exits on Ctrl+C until the returned func is called.
func watchInterrupt() func() {
	ctx, stop := shutdown.Context(context.Background())
	var done atomic.Bool
	go func() {
		<-ctx.Done()
		if !done.Load() {
			resetTerminal()
			println("\nInterrupted")
			os.Exit(1)
		}
	}()
	return func() {
		done.Store(true)
		stop()
	}
}

func pass(format string, args ...any) bool {
	fmt.Printf("  PASS: "+format+"\n", args...)
	return true
}

func fail(format string, args ...any) bool {
	fmt.Printf("  FAIL: "+format+"\n", args...)
	return false
}

func checkSettings(opts Options) bool {
	if opts.ConfigPath == "" {
		return pass("using defaults")
	}
	s, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fail("%v", err)
	}
	return pass("%s (accel %s, delay %s)", opts.ConfigPath, s.Keybinding, s.MuteDelay)
}

func checkAudio(opts Options) bool {
	// Events are not needed here; only the request connection is exercised.
	p, err := mixer.NewPulse(opts.Server, func(func()) {})
	if err != nil {
		return fail("cannot connect: %v", err)
	}
	defer p.Close()

	desc, err := describeSource(p)
	if err != nil {
		return fail("%v", err)
	}
	return pass("%s", desc)
}

var errNoSource = errors.New("no default input device")

// describeSource summarizes the default input and who is recording from it.
func describeSource(b mixer.Backend) (string, error) {
	src := b.DefaultSource()
	if src == nil {
		return "", errNoSource
	}
	state := "unmuted"
	if src.Muted() {
		state = "muted"
	}
	var names []string
	for _, app := range b.RecordingApps() {
		if slices.Contains(mic.ExcludedApps, app.ID) {
			continue
		}
		names = append(names, app.Name)
	}
	recording := "nobody recording"
	if len(names) > 0 {
		recording = "recording: " + strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s, %s, %s", src.Name(), state, recording), nil
}

func checkNotifications(Options) bool {
	info, err := osd.Diagnose()
	if err != nil {
		return fail("%v", err)
	}
	return pass("%s", info)
}

func checkHotkey(opts Options) bool {
	info, err := hotkey.Diagnose()
	if err != nil {
		return fail("%v", err)
	}
	fmt.Printf("  %s\n", info)

	fmt.Printf("Press %s...\n", opts.Accel)
	hk := hotkey.New(opts.Accel)
	if err := hk.Register(); err != nil {
		return fail("could not register hotkey: %v", err)
	}
	defer hk.Unregister()

	ok := waitTrigger(hk.Triggers(), 10*time.Second)
	// A grabbed keyboard may leave the terminal in raw mode.
	resetTerminal()
	if !ok {
		return fail("timeout waiting for hotkey")
	}
	return pass("hotkey detected")
}

// waitTrigger waits for one trigger, then drains autorepeat while the key is held.
func waitTrigger(triggers <-chan struct{}, timeout time.Duration) bool {
	select {
	case <-triggers:
	case <-time.After(timeout):
		return false
	}
	for {
		select {
		case <-triggers:
		case <-time.After(300 * time.Millisecond):
			return true
		}
	}
}

func checkSounds(opts Options) bool {
	p, err := beep.New(opts.Sounds)
	if err != nil {
		return fail("cannot open audio output: %v", err)
	}
	defer p.Close()

	p.On().Play()
	time.Sleep(400 * time.Millisecond)
	p.Off().Play()
	time.Sleep(400 * time.Millisecond)

	if !confirm(os.Stdin, os.Stdout, "Did you hear two ticks?") {
		return fail("sounds not confirmed")
	}
	return pass("sounds verified by user")
}

func confirm(r io.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s [y/n]: ", question)
	answer, _ := bufio.NewReader(r).ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}
