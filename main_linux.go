//go:build linux

package main

// headless waits without a tray. evdev needs no UI thread.
func headless(wait func()) { wait() }
