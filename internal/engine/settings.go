package engine

import (
	"fmt"
	"sync"

	"github.com/notabase/search/config"
	apperrors "github.com/notabase/search/internal/errors"
)

// SettingsHolder shares one mutable settings value between the dispatcher
// and the admin API. Updates are validated as a whole; a rejected update
// leaves the previous settings untouched.
type SettingsHolder struct {
	mu       sync.RWMutex
	settings config.Settings
}

func NewSettingsHolder(settings config.Settings) *SettingsHolder {
	return &SettingsHolder{settings: settings}
}

// Get returns a copy of the current settings.
func (h *SettingsHolder) Get() config.Settings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settings
}

// Update validates and installs new settings atomically.
func (h *SettingsHolder) Update(settings config.Settings) error {
	if conflicts := settings.Validate(); len(conflicts) > 0 {
		return apperrors.NewValidationError("settings", fmt.Sprintf("%v", conflicts))
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.settings = settings
	return nil
}
