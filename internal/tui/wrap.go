package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// glyph is one rendered target rune with its display width.
type glyph struct {
	s       string
	width   int
	isSpace bool
}

const wrongSpace = '·'

// buildGlyphs styles target against input. The rune under the cursor is
// underlined and the word being typed is highlighted.
func buildGlyphs(target, input []rune) []glyph {
	cursor := len(input)
	if cursor >= len(target) {
		cursor = -1
	}
	current := wordAt(findWords(target), cursor)

	out := make([]glyph, 0, len(target))
	for i, want := range target {
		shown := want
		style := pendingStyle
		switch {
		case i < len(input) && want == ' ' && input[i] != ' ':
			shown = wrongSpace
			style = incorrectStyle
		case i < len(input) && input[i] == want:
			style = correctStyle
		case i < len(input):
			style = incorrectStyle
		case want != ' ' && current != nil && i >= current.start && i < current.end:
			style = currentWordStyle
		}
		if i == cursor {
			style = style.Underline(true)
		}
		out = append(out, glyph{
			s:       style.Render(string(shown)),
			width:   runewidth.RuneWidth(shown),
			isSpace: want == ' ',
		})
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

func findWords(target []rune) []wordRange {
	var words []wordRange
	start := -1
	for i, r := range target {
		if r == ' ' {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(target)})
	}
	return words
}

// wordAt returns the word containing cursor, or the next one when the
// cursor sits on a space. A finished text has no current word.
func wordAt(words []wordRange, cursor int) *wordRange {
	if cursor < 0 {
		return nil
	}
	for i, w := range words {
		if cursor < w.end {
			return &words[i]
		}
	}
	return nil
}

func joinGlyphs(glyphs []glyph) string {
	var b strings.Builder
	for _, g := range glyphs {
		b.WriteString(g.s)
	}
	return b.String()
}

// wrapGlyphs breaks lines at the last space that fits in width. Words
// longer than width are hard-broken.
func wrapGlyphs(glyphs []glyph, width int) string {
	if width <= 0 {
		return joinGlyphs(glyphs)
	}
	var out strings.Builder
	line := make([]glyph, 0, width)
	lineWidth := 0
	lastSpace := -1

	for i := 0; i < len(glyphs); {
		g := glyphs[i]
		if lineWidth+g.width > width && len(line) > 0 {
			switch {
			case g.isSpace:
				out.WriteString(joinGlyphs(line))
				out.WriteByte('\n')
				line = line[:0]
				lineWidth = 0
				lastSpace = -1
				i++
			case lastSpace >= 0:
				out.WriteString(joinGlyphs(line[:lastSpace]))
				out.WriteByte('\n')
				line = append([]glyph{}, line[lastSpace+1:]...)
				lineWidth = widthOf(line)
				lastSpace = lastSpaceIn(line)
			default:
				out.WriteString(joinGlyphs(line))
				out.WriteByte('\n')
				line = line[:0]
				lineWidth = 0
				lastSpace = -1
			}
			continue
		}
		line = append(line, g)
		lineWidth += g.width
		if g.isSpace {
			lastSpace = len(line) - 1
		}
		i++
	}
	out.WriteString(joinGlyphs(line))
	return out.String()
}

func widthOf(line []glyph) int {
	total := 0
	for _, g := range line {
		total += g.width
	}
	return total
}

func lastSpaceIn(line []glyph) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
