package common

import "errors"

// ErrModulePaused is returned by every value-moving instruction attempted
// while the platform pause flag is set.
var ErrModulePaused = errors.New("module paused")

// PauseView reports whether a module's value-moving instructions are halted.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects the instruction when the module is paused.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}
