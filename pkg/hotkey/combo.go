// Package hotkey derives combo engaged/disengaged transitions from raw key
// edges delivered by one or more input sources.
package hotkey

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Canonical key codes follow the Linux input event numbering. Sources for
// other backends translate their platform codes into these before emitting.
const (
	KeyLeftCtrl   uint16 = 29
	KeyLeftShift  uint16 = 42
	KeyRightShift uint16 = 54
	KeyLeftAlt    uint16 = 56
	KeyRightCtrl  uint16 = 97
	KeyRightAlt   uint16 = 100
)

// letterCodes maps letter and digit names to canonical codes.
var letterCodes = map[rune]uint16{
	'a': 30, 'b': 48, 'c': 46, 'd': 32, 'e': 18, 'f': 33, 'g': 34,
	'h': 35, 'i': 23, 'j': 36, 'k': 37, 'l': 38, 'm': 50, 'n': 49,
	'o': 24, 'p': 25, 'q': 16, 'r': 19, 's': 31, 't': 20, 'u': 22,
	'v': 47, 'w': 17, 'x': 45, 'y': 21, 'z': 44,
	'1': 2, '2': 3, '3': 4, '4': 5, '5': 6, '6': 7, '7': 8, '8': 9,
	'9': 10, '0': 11,
}

// KeyState tracks the last seen pressed state of every key code. Entries are
// updated in place and never removed.
type KeyState map[uint16]bool

// Group is a set of interchangeable key codes; the group is satisfied when
// at least one member is pressed.
type Group []uint16

func (g Group) satisfied(keys KeyState) bool {
	for _, code := range g {
		if keys[code] {
			return true
		}
	}
	return false
}

// Modifier groups pair the left and right variants.
var (
	GroupCtrl  = Group{KeyLeftCtrl, KeyRightCtrl}
	GroupAlt   = Group{KeyLeftAlt, KeyRightAlt}
	GroupShift = Group{KeyLeftShift, KeyRightShift}
)

// ErrEmptyCombo reports a combo definition with nothing to press.
var ErrEmptyCombo = errors.New("combo definition has no key groups")

// ComboDefinition is an immutable set of key groups. The combo is satisfied
// when every group has at least one pressed member.
type ComboDefinition struct {
	groups []Group
	label  string
}

// NewCombo builds a definition from the given groups.
func NewCombo(label string, groups ...Group) (*ComboDefinition, error) {
	if len(groups) == 0 {
		return nil, ErrEmptyCombo
	}
	for _, g := range groups {
		if len(g) == 0 {
			return nil, ErrEmptyCombo
		}
	}
	return &ComboDefinition{groups: groups, label: label}, nil
}

// FromSettings builds the combo described by the config flags: any
// combination of ctrl/alt/shift plus an optional literal key name.
func FromSettings(ctrl, alt, shift bool, key string) (*ComboDefinition, error) {
	var groups []Group
	var parts []string

	if ctrl {
		groups = append(groups, GroupCtrl)
		parts = append(parts, "Ctrl")
	}
	if alt {
		groups = append(groups, GroupAlt)
		parts = append(parts, "Alt")
	}
	if shift {
		groups = append(groups, GroupShift)
		parts = append(parts, "Shift")
	}

	key = strings.ToLower(strings.TrimSpace(key))
	if key != "" {
		code, err := KeyCodeFor(key)
		if err != nil {
			return nil, err
		}
		groups = append(groups, Group{code})
		parts = append(parts, strings.ToUpper(key))
	}

	return NewCombo(strings.Join(parts, "+"), groups...)
}

// KeyCodeFor resolves a single-character key name to its canonical code.
func KeyCodeFor(name string) (uint16, error) {
	runes := []rune(strings.ToLower(strings.TrimSpace(name)))
	if len(runes) != 1 {
		return 0, fmt.Errorf("unsupported key name %q", name)
	}
	code, ok := letterCodes[runes[0]]
	if !ok {
		return 0, fmt.Errorf("unsupported key name %q", name)
	}
	return code, nil
}

// Satisfied reports whether every group has a pressed member.
func (c *ComboDefinition) Satisfied(keys KeyState) bool {
	for _, g := range c.groups {
		if !g.satisfied(keys) {
			return false
		}
	}
	return true
}

// Codes returns every member code across all groups, sorted, for sources
// that need to know which keys the combo can involve.
func (c *ComboDefinition) Codes() []uint16 {
	var out []uint16
	for _, g := range c.groups {
		out = append(out, g...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RepresentativeCodes returns one member per group. Sources that only see
// whole-combo transitions use these to synthesize per-key edges.
func (c *ComboDefinition) RepresentativeCodes() []uint16 {
	out := make([]uint16, len(c.groups))
	for i, g := range c.groups {
		out[i] = g[0]
	}
	return out
}

// String returns a human-readable label like "Alt+Shift".
func (c *ComboDefinition) String() string {
	if c.label == "" {
		return fmt.Sprintf("%d-key combo", len(c.groups))
	}
	return c.label
}
