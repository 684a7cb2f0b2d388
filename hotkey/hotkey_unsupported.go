//go:build !linux && !darwin && !windows

package hotkey

import "errors"

var errUnsupported = errors.New("global hotkeys are not supported on this platform")

type noHotkey struct{ triggers chan struct{} }

func New(Accelerator) Hotkey { return &noHotkey{triggers: make(chan struct{})} }

func (h *noHotkey) Register() error           { return errUnsupported }
func (h *noHotkey) Unregister()               {}
func (h *noHotkey) Triggers() <-chan struct{} { return h.triggers }

func Diagnose() (string, error) { return "", errUnsupported }
