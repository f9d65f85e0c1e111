// Package keymap maps keys to the fingers and hands that should type them.
package keymap

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Finger identifies one of the nine typing fingers.
type Finger string

const (
	LeftPinky   Finger = "left-pinky"
	LeftRing    Finger = "left-ring"
	LeftMiddle  Finger = "left-middle"
	LeftIndex   Finger = "left-index"
	RightIndex  Finger = "right-index"
	RightMiddle Finger = "right-middle"
	RightRing   Finger = "right-ring"
	RightPinky  Finger = "right-pinky"
	Thumb       Finger = "thumb"
)

// Side is the hand a key belongs to.
type Side int

const (
	None Side = iota
	Left
	Right
)

// Fingers lists all fingers from left pinky to thumb.
var Fingers = []Finger{LeftPinky, LeftRing, LeftMiddle, LeftIndex, RightIndex, RightMiddle, RightRing, RightPinky, Thumb}

var fingerMap = map[rune]Finger{
	'q': LeftPinky, 'a': LeftPinky, 'z': LeftPinky, '1': LeftPinky,
	'w': LeftRing, 's': LeftRing, 'x': LeftRing, '2': LeftRing,
	'e': LeftMiddle, 'd': LeftMiddle, 'c': LeftMiddle, '3': LeftMiddle,
	'r': LeftIndex, 'f': LeftIndex, 'v': LeftIndex, '4': LeftIndex, '5': LeftIndex, 't': LeftIndex, 'g': LeftIndex, 'b': LeftIndex,
	'y': RightIndex, 'h': RightIndex, 'n': RightIndex, '6': RightIndex, '7': RightIndex, 'u': RightIndex, 'j': RightIndex, 'm': RightIndex,
	'i': RightMiddle, 'k': RightMiddle, ',': RightMiddle, '8': RightMiddle,
	'o': RightRing, 'l': RightRing, '.': RightRing, '9': RightRing,
	'p': RightPinky, ';': RightPinky, '/': RightPinky, '0': RightPinky, '-': RightPinky, '=': RightPinky, '[': RightPinky, ']': RightPinky, '\'': RightPinky,
	' ': Thumb,
}

var labels = map[Finger]string{
	LeftPinky:   "left pinky",
	LeftRing:    "left ring",
	LeftMiddle:  "left middle",
	LeftIndex:   "left index",
	RightIndex:  "right index",
	RightMiddle: "right middle",
	RightRing:   "right ring",
	RightPinky:  "right pinky",
	Thumb:       "thumbs (space)",
}

// FingerFor returns the finger assigned to r. Letters are matched case-insensitively.
func FingerFor(r rune) (Finger, bool) {
	f, ok := fingerMap[unicode.ToLower(r)]
	return f, ok
}

// SideOf returns the hand for r; thumb and unmapped keys have no side.
func SideOf(r rune) Side {
	f, ok := FingerFor(r)
	if !ok {
		return None
	}
	return f.Side()
}

// Side returns the hand the finger belongs to.
func (f Finger) Side() Side {
	switch {
	case strings.HasPrefix(string(f), "left-"):
		return Left
	case strings.HasPrefix(string(f), "right-"):
		return Right
	default:
		return None
	}
}

// Label returns a human-readable finger name.
func (f Finger) Label() string {
	if l, ok := labels[f]; ok {
		return l
	}
	return "any finger"
}

// KeysForFinger returns the letters a finger drills, sorted. The thumb only drills space.
func KeysForFinger(f Finger) []rune {
	if f == Thumb {
		return []rune{' '}
	}
	var keys []rune
	for r, owner := range fingerMap {
		if owner == f && r >= 'a' && r <= 'z' {
			keys = append(keys, r)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// ParseFinger validates a finger identifier.
func ParseFinger(s string) (Finger, error) {
	f := Finger(strings.TrimSpace(strings.ToLower(s)))
	if _, ok := labels[f]; !ok {
		return "", fmt.Errorf("unknown finger %q", s)
	}
	return f, nil
}
