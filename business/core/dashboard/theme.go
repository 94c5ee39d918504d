package dashboard

import (
	"fmt"
	"strings"

	"github.com/ardanlabs/simwallet/foundation/events"
)

// themeKey is the local storage key holding the theme.
const themeKey = "theme"

// Theme is the color scheme of the dashboard.
type Theme string

// Set of themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Theme returns the active theme.
func (s *Session) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.theme
}

// ToggleTheme switches between the dark and light themes and saves the
// choice. The theme is applied even when it can't be saved.
func (s *Session) ToggleTheme(dark bool) error {
	theme := ThemeLight
	evt := events.Info("Switched to Light Mode", events.ColorLight)
	if dark {
		theme = ThemeDark
		evt = events.Info("Switched to Dark Mode", events.ColorDark)
	}

	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()

	s.notifier.Notify(evt)

	if s.storage == nil {
		return nil
	}

	if err := s.storage.Set(themeKey, string(theme)); err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}

	return nil
}

// LoadTheme applies the saved theme and returns it.
func (s *Session) LoadTheme() Theme {
	theme := s.loadTheme()

	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()

	return theme
}

// loadTheme reads the saved theme, falling back to the light theme.
func (s *Session) loadTheme() Theme {
	if s.storage == nil {
		return ThemeLight
	}

	value, exists, err := s.storage.Get(themeKey)
	if err != nil {
		s.evHandler("session[%s]: loadTheme: ERROR: %s", s.ID, err)
		return ThemeLight
	}

	if exists && Theme(value) == ThemeDark {
		return ThemeDark
	}

	return ThemeLight
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
