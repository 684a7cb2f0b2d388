//go:build !linux && !darwin && !windows

package login

import "errors"

func Enabled() bool  { return false }
func Enable() error  { return errors.ErrUnsupported }
func Disable() error { return errors.ErrUnsupported }
