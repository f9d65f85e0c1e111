package stats

import (
	"sort"
	"unicode/utf8"

	"github.com/verte-zerg/typemaster/internal/keymap"
	"github.com/verte-zerg/typemaster/internal/model"
)

// TopKeys returns the n most missed keys, ties by key ascending. n <= 0 keeps all.
func TopKeys(aggs []model.KeyAggregate, n int) []model.KeyAggregate {
	items := make([]model.KeyAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Mistakes > 0 {
			items = append(items, agg)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Mistakes == items[j].Mistakes {
			return items[i].Char < items[j].Char
		}
		return items[i].Mistakes > items[j].Mistakes
	})
	if n > 0 && n < len(items) {
		items = items[:n]
	}
	return items
}

// ProfileKeys converts the lifetime mistake map of a profile into aggregates.
func ProfileKeys(mistakes map[string]int) []model.KeyAggregate {
	out := make([]model.KeyAggregate, 0, len(mistakes))
	for k, v := range mistakes {
		out = append(out, model.KeyAggregate{Char: k, Mistakes: v})
	}
	return TopKeys(out, 0)
}

func keyLabel(ch string) string {
	if ch == " " {
		return "<space>"
	}
	return ch
}

func fingerLabel(ch string) string {
	r, size := utf8.DecodeRuneInString(ch)
	if size == 0 {
		return "-"
	}
	f, ok := keymap.FingerFor(r)
	if !ok {
		return "-"
	}
	return string(f)
}
