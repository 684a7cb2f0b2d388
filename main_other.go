//go:build !linux

package main

import (
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

// The tray and the hotkey both need the process's main thread.
func init() {
	runtime.LockOSThread()
}

// headless runs the main-thread event loop x/hotkey depends on when no tray
// is there to run it.
func headless(wait func()) { mainthread.Init(wait) }
