package wordlist

import (
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/typemaster/internal/keymap"
)

// MaxWordLen bounds words accepted into a practice vocabulary.
const MaxWordLen = 12

// Typable reports whether word is a single short token made of letters
// and keys the finger map knows about.
func Typable(word string) bool {
	n := utf8.RuneCountInString(word)
	if n == 0 || n > MaxWordLen {
		return false
	}
	for _, r := range word {
		if unicode.IsSpace(r) || unicode.IsUpper(r) {
			return false
		}
		if unicode.IsLetter(r) {
			continue
		}
		if _, ok := keymap.FingerFor(r); !ok {
			return false
		}
	}
	return true
}
