//go:build windows

package hotkey

import "golang.design/x/hotkey"

var modifiersByName = map[string]hotkey.Modifier{
	"commandorcontrol": hotkey.ModCtrl,
	"control":          hotkey.ModCtrl,
	"ctrl":             hotkey.ModCtrl,
	"shift":            hotkey.ModShift,
	"alt":              hotkey.ModAlt,
	"super":            hotkey.ModWin,
	"win":              hotkey.ModWin,
}
