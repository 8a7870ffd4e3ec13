// Package theme tracks whether the backdrop is light or dark.
package theme

import (
	"fmt"
	"strings"

	dark "github.com/thiagokokada/dark-mode-go"
	"go.uber.org/zap"
)

type Theme string

const (
	Light  Theme = "light"
	Dark   Theme = "dark"
	System Theme = "system"
)

// Parse accepts light, dark or system; "" and "auto" mean system.
func Parse(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case Light, Dark, System:
		return t, nil
	case "", "auto":
		return System, nil
	}
	return System, fmt.Errorf("theme: unknown theme %q", s)
}

// Detector reports the operating system's dark-mode preference.
type Detector func() (bool, error)

// SystemDetector asks the desktop environment.
func SystemDetector() (bool, error) { return dark.IsDarkMode() }

// Selector holds the current theme and notifies listeners on change.
type Selector struct {
	current   Theme
	listeners map[int]func(Theme)
	order     []int
	nextID    int
	log       *zap.Logger
}

// NewSelector resolves the initial theme. System asks detect and falls back to
// light when detection fails or detect is nil.
func NewSelector(initial Theme, detect Detector, log *zap.Logger) *Selector {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Selector{listeners: make(map[int]func(Theme)), log: log.Named("theme")}
	switch initial {
	case Light, Dark:
		s.current = initial
	default:
		s.current = s.detect(detect)
	}
	s.log.Debug("initial theme", zap.String("theme", string(s.current)), zap.String("requested", string(initial)))
	return s
}

func (s *Selector) detect(detect Detector) Theme {
	if detect == nil {
		return Light
	}
	isDark, err := detect()
	if err != nil {
		s.log.Warn("system theme detection failed, using light", zap.Error(err))
		return Light
	}
	if isDark {
		return Dark
	}
	return Light
}

func (s *Selector) Current() Theme { return s.current }

func (s *Selector) IsDark() bool { return s.current == Dark }

// Set switches to t. Listeners run only when the theme actually changes.
func (s *Selector) Set(t Theme) error {
	if t != Light && t != Dark {
		return fmt.Errorf("theme: cannot set %q", t)
	}
	if t == s.current {
		return nil
	}
	s.current = t
	s.log.Info("theme changed", zap.String("theme", string(t)))
	for _, id := range s.order {
		if fn, ok := s.listeners[id]; ok {
			fn(t)
		}
	}
	return nil
}

// Toggle flips between light and dark and returns the new theme.
func (s *Selector) Toggle() Theme {
	next := Dark
	if s.current == Dark {
		next = Light
	}
	_ = s.Set(next)
	return next
}

// OnChange registers fn and returns a function that removes it.
func (s *Selector) OnChange(fn func(Theme)) (remove func()) {
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	s.order = append(s.order, id)
	return func() {
		if _, ok := s.listeners[id]; !ok {
			return
		}
		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}
