package generator

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/verte-zerg/typemaster/internal/keymap"
)

func TestFingerDrillUsesOnlyFingerKeys(t *testing.T) {
	g := NewSeeded(1)
	text := g.FingerDrill(keymap.LeftIndex, FingerDrillChars)
	if text == "" {
		t.Fatalf("expected drill text")
	}
	if n := utf8.RuneCountInString(text); n > FingerDrillChars {
		t.Fatalf("expected at most %d chars, got %d", FingerDrillChars, n)
	}
	for _, r := range text {
		if r == ' ' {
			continue
		}
		if !strings.ContainsRune("rfvtgb", r) {
			t.Fatalf("unexpected key %q in left-index drill %q", r, text)
		}
	}
	for _, token := range strings.Fields(text) {
		if utf8.RuneCountInString(token) != 2 {
			t.Fatalf("expected two-key tokens, got %q", token)
		}
	}
}

func TestFingerDrillThumbIsEmptyAfterTrim(t *testing.T) {
	g := NewSeeded(1)
	if text := g.FingerDrill(keymap.Thumb, 20); text != "" {
		t.Fatalf("expected only whitespace for thumb drill, got %q", text)
	}
}

func TestAlternatingHandsSwitchesHands(t *testing.T) {
	g := NewSeeded(7)
	text := g.AlternatingHands(AlternatingChars)
	if n := utf8.RuneCountInString(text); n > AlternatingChars || n == 0 {
		t.Fatalf("unexpected length %d", n)
	}
	for _, token := range strings.Fields(text) {
		runes := []rune(token)
		if len(runes) != 2 {
			t.Fatalf("expected two-key token, got %q", token)
		}
		if !strings.ContainsRune(string(leftHand), runes[0]) {
			t.Fatalf("expected left-hand key first in %q", token)
		}
		if !strings.ContainsRune(string(rightHand), runes[1]) {
			t.Fatalf("expected right-hand key second in %q", token)
		}
	}
}

func TestWordMixUsesVocabulary(t *testing.T) {
	g := NewSeeded(3).WithVocabulary([]string{"alpha", "beta"})
	text := g.WordMix(SprintChars)
	if n := utf8.RuneCountInString(text); n > SprintChars || n == 0 {
		t.Fatalf("unexpected length %d", n)
	}
	punctSeen := false
	for _, token := range strings.Fields(text) {
		word := strings.TrimRight(token, ".!?,")
		if word != token {
			punctSeen = true
		}
		if word != "alpha" && word != "beta" {
			t.Fatalf("unexpected word %q", token)
		}
	}
	if !punctSeen {
		t.Fatalf("expected some punctuation in %q", text)
	}
}

func TestGeneratorIsDeterministic(t *testing.T) {
	a := NewSeeded(42).WordMix(120)
	b := NewSeeded(42).WordMix(120)
	if a != b {
		t.Fatalf("expected identical output for the same seed:\n%q\n%q", a, b)
	}
}

func TestAdaptiveFocusKeys(t *testing.T) {
	g := NewSeeded(5)
	text, focus := g.Adaptive(map[string]int{"k": 9, "l": 4}, AdaptiveChars)
	if len(focus) != maxFocusKeys {
		t.Fatalf("expected %d focus keys, got %v", maxFocusKeys, focus)
	}
	if focus[0] != "k" || focus[1] != "l" {
		t.Fatalf("expected k then l first, got %v", focus)
	}
	if n := utf8.RuneCountInString(text); n > AdaptiveChars || n == 0 {
		t.Fatalf("unexpected length %d", n)
	}

	allowed := map[string]struct{}{}
	for _, w := range CommonWords {
		allowed[w] = struct{}{}
	}
	for _, b := range CommonBigrams {
		allowed[b] = struct{}{}
	}
	focusSet := strings.Join(focus, "")
	tokens := strings.Fields(text)
	for i, token := range tokens {
		if _, ok := allowed[token]; ok {
			continue
		}
		runes := []rune(token)
		if len(runes) == 2 && strings.ContainsRune(focusSet, runes[0]) && strings.ContainsRune(focusSet, runes[1]) {
			continue
		}
		if i == len(tokens)-1 {
			// Budget truncation may leave a shortened final word.
			continue
		}
		t.Fatalf("unexpected token %q", token)
	}
}

func TestFocusKeysOrderingAndFilter(t *testing.T) {
	focus := FocusKeys(map[string]int{
		"b": 3, "a": 3, "z": 10, "shift": 50, "q": 0, " ": 2, "c": 1, "d": 1, "e": 1,
	})
	want := []string{"z", "a", "b", " ", "c", "d"}
	if strings.Join(focus, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, focus)
	}
}

func TestFocusKeysDefaultsToHomeRow(t *testing.T) {
	focus := FocusKeys(nil)
	if strings.Join(focus, "") != "asdfjk" {
		t.Fatalf("unexpected default focus keys: %v", focus)
	}
}

func TestJoinDropsPartialToken(t *testing.T) {
	g := NewSeeded(1)
	text := g.join([]string{"abcd"}, 7)
	if text != "abcd" {
		t.Fatalf("expected partial token to be dropped, got %q", text)
	}
	if got := g.join([]string{"abcdef"}, 3); got != "abc" {
		t.Fatalf("expected truncated single token, got %q", got)
	}
}
