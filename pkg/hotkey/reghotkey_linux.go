//go:build linux

package hotkey

import xhotkey "golang.design/x/hotkey"

// X11 exposes alt as the Mod1 mask.
const modAlt = xhotkey.Mod1
