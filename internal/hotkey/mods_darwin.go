//go:build darwin

package hotkey

import "golang.design/x/hotkey"

var modifiersByName = map[string]hotkey.Modifier{
	"commandorcontrol": hotkey.ModCmd,
	"command":          hotkey.ModCmd,
	"cmd":              hotkey.ModCmd,
	"control":          hotkey.ModCtrl,
	"ctrl":             hotkey.ModCtrl,
	"shift":            hotkey.ModShift,
	"alt":              hotkey.ModOption,
	"option":           hotkey.ModOption,
}
