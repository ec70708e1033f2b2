// Package hotkey registers the global shortcut and re-registers it live when
// the configured combo changes. Combo strings use the UI's
// "CommandOrControl+Shift+V" form; "CommandOrControl" resolves to the
// platform's primary modifier via the build-tagged modifier tables.
package hotkey

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.design/x/hotkey"
)

// Registrar is what the command boundary needs from a hotkey manager.
type Registrar interface {
	Register(combo string, fn func()) error
	Reregister(combo string) error
	Close()
}

type Manager struct {
	log *zap.Logger

	current *hotkey.Hotkey
	combo   string
	fn      func()
	done    chan struct{}
}

func NewManager(log *zap.Logger) *Manager {
	return &Manager{log: log}
}

// Register binds combo to fn, replacing any previous registration.
func (m *Manager) Register(combo string, fn func()) error {
	m.fn = fn
	return m.Reregister(combo)
}

// Reregister unbinds the current combo and binds the new one, keeping the
// callback from Register.
func (m *Manager) Reregister(combo string) error {
	mods, key, err := Parse(combo)
	if err != nil {
		return err
	}

	m.unbind()

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("failed to register shortcut %q: %w", combo, err)
	}

	m.current = hk
	m.combo = combo
	m.done = make(chan struct{})

	go func(hk *hotkey.Hotkey, done chan struct{}) {
		for {
			select {
			case <-done:
				return
			case <-hk.Keydown():
				if m.fn != nil {
					m.fn()
				}
			}
		}
	}(hk, m.done)

	m.log.Info("global shortcut registered", zap.String("combo", combo))
	return nil
}

func (m *Manager) unbind() {
	if m.current == nil {
		return
	}
	close(m.done)
	if err := m.current.Unregister(); err != nil {
		m.log.Warn("failed to unregister shortcut",
			zap.String("combo", m.combo), zap.Error(err))
	}
	m.current = nil
}

func (m *Manager) Close() {
	m.unbind()
}

// Parse converts a combo string such as "CommandOrControl+Shift+V" into the
// platform's modifier set and key. The final token is the key; everything
// before it must be a modifier.
func Parse(combo string) ([]hotkey.Modifier, hotkey.Key, error) {
	parts := strings.Split(combo, "+")
	if len(parts) < 2 {
		return nil, 0, fmt.Errorf("invalid shortcut %q: need at least one modifier and a key", combo)
	}

	mods := make([]hotkey.Modifier, 0, len(parts)-1)
	for _, part := range parts[:len(parts)-1] {
		mod, ok := modifiersByName[strings.ToLower(strings.TrimSpace(part))]
		if !ok {
			return nil, 0, fmt.Errorf("invalid shortcut %q: unknown modifier %q", combo, part)
		}
		mods = append(mods, mod)
	}

	keyName := strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
	key, ok := keysByName[keyName]
	if !ok {
		return nil, 0, fmt.Errorf("invalid shortcut %q: unknown key %q", combo, parts[len(parts)-1])
	}

	return mods, key, nil
}

var keysByName = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"space": hotkey.KeySpace, "tab": hotkey.KeyTab,
	"enter": hotkey.KeyReturn, "return": hotkey.KeyReturn,
	"up": hotkey.KeyUp, "down": hotkey.KeyDown,
	"left": hotkey.KeyLeft, "right": hotkey.KeyRight,
}
