package common

import "errors"

// ErrModulePaused is returned by Guard when the named module's pause switch
// is set.
var ErrModulePaused = errors.New("module paused")

// PauseView reads per-module pause switches. Implemented by the state
// manager; engines consult it at the top of every transition.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard returns ErrModulePaused when the module is paused. A nil view or an
// empty module name never blocks.
func Guard(view PauseView, module string) error {
	if view == nil || module == "" {
		return nil
	}
	if view.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}
