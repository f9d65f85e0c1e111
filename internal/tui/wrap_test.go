package tui

import (
	"strings"
	"testing"
)

func TestBuildGlyphsCursor(t *testing.T) {
	glyphs := buildGlyphs([]rune("ab"), []rune("a"))
	if len(glyphs) != 2 {
		t.Fatalf("expected 2 glyphs, got %d", len(glyphs))
	}
	if glyphs[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first rune")
	}
	if glyphs[1].s != currentWordStyle.Underline(true).Render("b") {
		t.Fatalf("expected underlined cursor on second rune")
	}
}

func TestBuildGlyphsKeepsTargetOnMistype(t *testing.T) {
	glyphs := buildGlyphs([]rune("ab"), []rune("ax"))
	if glyphs[1].s != incorrectStyle.Render("b") {
		t.Fatalf("expected target rune in incorrect style")
	}
}

func TestBuildGlyphsWrongSpace(t *testing.T) {
	glyphs := buildGlyphs([]rune("a b"), []rune("ax"))
	if len(glyphs) != 3 {
		t.Fatalf("expected 3 glyphs, got %d", len(glyphs))
	}
	if glyphs[1].s != incorrectStyle.Render(string(wrongSpace)) {
		t.Fatalf("expected marker for wrong space, got %q", glyphs[1].s)
	}
	if !glyphs[1].isSpace {
		t.Fatalf("wrong space must still wrap as a space")
	}
}

func TestBuildGlyphsCurrentWord(t *testing.T) {
	glyphs := buildGlyphs([]rune("one two"), []rune("o"))
	if glyphs[2].s != currentWordStyle.Render("e") {
		t.Fatalf("expected current word style inside the word being typed")
	}
	if glyphs[4].s != pendingStyle.Render("t") {
		t.Fatalf("expected pending style for the next word")
	}
}

func TestWordAt(t *testing.T) {
	words := findWords([]rune("ab  cd"))
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %v", words)
	}
	if w := wordAt(words, 3); w == nil || w.start != 4 {
		t.Fatalf("cursor on a space should point at the next word, got %v", w)
	}
	if w := wordAt(words, -1); w != nil {
		t.Fatalf("finished text has no current word")
	}
}

func TestWrapGlyphs(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		width  int
		expect string
	}{
		{name: "fits", text: "asdf jkl", width: 20, expect: "asdf jkl"},
		{name: "breaks at space", text: "asdf jkl asdf", width: 9, expect: "asdf jkl\nasdf"},
		{name: "hard break", text: "abcdefgh", width: 3, expect: "abc\ndef\ngh"},
		{name: "no width", text: "a b", width: 0, expect: "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := []rune(tt.text)
			got := wrapGlyphs(buildGlyphs(target, target), tt.width)
			if got != tt.expect {
				t.Fatalf("wrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.expect)
			}
		})
	}
}

func TestWrapGlyphsWideRunes(t *testing.T) {
	target := []rune("漢字 漢字")
	got := wrapGlyphs(buildGlyphs(target, target), 4)
	if strings.Count(got, "\n") != 1 {
		t.Fatalf("expected one break for double-width runes, got %q", got)
	}
}
