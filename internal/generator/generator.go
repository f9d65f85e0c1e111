// Package generator builds practice text for each lesson mode.
package generator

import (
	"math/rand"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/typemaster/internal/keymap"
)

// Default character budgets per lesson mode.
const (
	FingerDrillChars = 160
	AlternatingChars = 220
	SprintChars      = 360
	AdaptiveChars    = 260
)

const (
	fingerPool      = 40
	alternatingPool = 80
	sprintPool      = 80
	adaptivePool    = 70

	maxFocusKeys = 6

	punctProb        = 0.25
	focusBigramProb  = 0.55
	commonBigramProb = 0.75
)

var (
	leftHand  = []rune("asdfqwerzxcv")
	rightHand = []rune("jkl;uiopm,./")
	sprintEnd = []string{".", "!", "?", ","}

	defaultFocus = []string{"a", "s", "d", "f", "j", "k", "l", ";"}
)

// CommonWords is the built-in practice vocabulary.
var CommonWords = []string{
	"que", "para", "com", "isso", "mais", "muito", "hoje", "amanha", "onde", "quando",
	"pratica", "teclado", "digitar", "rapido", "calma", "foco", "vamos", "agora",
	"nivel", "missao", "combo", "acerto", "erro", "tempo", "pontos", "progresso",
}

// CommonBigrams are frequent letter pairs of the practice language.
var CommonBigrams = []string{"qu", "de", "re", "ra", "es", "as", "os", "ar", "er", "ir", "ou", "em", "ao", "ma", "ta"}

// Generator produces randomized practice text from an injected random source.
type Generator struct {
	rnd        *rand.Rand
	vocabulary []string
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator whose output is reproducible for the seed.
func NewSeeded(seed int64) *Generator {
	return NewWithSource(rand.NewSource(seed))
}

// NewWithSource returns a Generator drawing from src.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src), vocabulary: CommonWords}
}

// WithVocabulary replaces the sprint vocabulary. An empty list keeps the built-in words.
func (g *Generator) WithVocabulary(words []string) *Generator {
	if len(words) > 0 {
		g.vocabulary = words
	}
	return g
}

// FingerDrill builds two-key tokens restricted to the keys of one finger.
func (g *Generator) FingerDrill(f keymap.Finger, maxChars int) string {
	keys := keymap.KeysForFinger(f)
	if len(keys) == 0 {
		return ""
	}
	tokens := make([]string, 0, fingerPool)
	for i := 0; i < fingerPool; i++ {
		tokens = append(tokens, string([]rune{pickRune(g.rnd, keys), pickRune(g.rnd, keys)}))
	}
	return g.join(tokens, maxChars)
}

// AlternatingHands builds tokens of one left-hand key followed by one right-hand key.
func (g *Generator) AlternatingHands(maxChars int) string {
	tokens := make([]string, 0, alternatingPool)
	for i := 0; i < alternatingPool; i++ {
		tokens = append(tokens, string([]rune{pickRune(g.rnd, leftHand), pickRune(g.rnd, rightHand)}))
	}
	return g.join(tokens, maxChars)
}

// WordMix draws common words, sometimes followed by terminal punctuation.
func (g *Generator) WordMix(maxChars int) string {
	tokens := make([]string, 0, sprintPool)
	for i := 0; i < sprintPool; i++ {
		word := pick(g.rnd, g.vocabulary)
		if g.rnd.Float64() < punctProb {
			word += pick(g.rnd, sprintEnd)
		}
		tokens = append(tokens, word)
	}
	return g.join(tokens, maxChars)
}

// Adaptive drills the most-missed keys and returns the resolved focus keys.
func (g *Generator) Adaptive(mistakes map[string]int, maxChars int) (string, []string) {
	focus := FocusKeys(mistakes)
	tokens := make([]string, 0, adaptivePool)
	for i := 0; i < adaptivePool; i++ {
		switch {
		case g.rnd.Float64() < focusBigramProb:
			tokens = append(tokens, pick(g.rnd, focus)+pick(g.rnd, focus))
		case g.rnd.Float64() < commonBigramProb:
			tokens = append(tokens, pick(g.rnd, CommonBigrams))
		default:
			tokens = append(tokens, pick(g.rnd, CommonWords))
		}
	}
	return g.join(tokens, maxChars), focus
}

// FocusKeys ranks single-character keys by mistake count (ties by key) and
// backfills from the home row up to six keys.
func FocusKeys(mistakes map[string]int) []string {
	type entry struct {
		key   string
		count int
	}
	entries := make([]entry, 0, len(mistakes))
	for k, v := range mistakes {
		if utf8.RuneCountInString(k) != 1 || v <= 0 {
			continue
		}
		entries = append(entries, entry{key: k, count: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count == entries[j].count {
			return entries[i].key < entries[j].key
		}
		return entries[i].count > entries[j].count
	})

	focus := make([]string, 0, maxFocusKeys)
	seen := map[string]struct{}{}
	for _, e := range entries {
		if len(focus) == maxFocusKeys {
			break
		}
		focus = append(focus, e.key)
		seen[e.key] = struct{}{}
	}
	for _, k := range defaultFocus {
		if len(focus) == maxFocusKeys {
			break
		}
		if _, ok := seen[k]; ok {
			continue
		}
		focus = append(focus, k)
	}
	return focus
}

// join appends randomly picked tokens until the budget is reached, then
// truncates and drops a trailing partial token.
func (g *Generator) join(tokens []string, maxChars int) string {
	if maxChars <= 0 || len(tokens) == 0 {
		return ""
	}
	var b strings.Builder
	for utf8.RuneCountInString(b.String()) < maxChars {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(pick(g.rnd, tokens))
	}
	runes := []rune(b.String())
	if len(runes) > maxChars {
		cutInToken := runes[maxChars] != ' ' && runes[maxChars-1] != ' '
		runes = runes[:maxChars]
		if cutInToken {
			if idx := lastSpace(runes); idx > 0 {
				runes = runes[:idx]
			}
		}
	}
	return strings.TrimSpace(string(runes))
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}

func pick(rnd *rand.Rand, items []string) string {
	return items[rnd.Intn(len(items))]
}

func pickRune(rnd *rand.Rand, items []rune) rune {
	return items[rnd.Intn(len(items))]
}
