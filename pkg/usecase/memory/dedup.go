package memory

import (
	"strings"

	"github.com/m-mizutani/mnemo/pkg/model"
)

// similarityThreshold is the lexical overlap ratio above which a
// candidate is treated as already known.
const similarityThreshold = 0.8

// IsDuplicate reports whether the candidate content duplicates any of the
// existing facts. Contents are compared lowercased and trimmed; an exact
// match is a duplicate, otherwise a character-inclusion ratio over the
// longer string decides. The metric is intentionally crude: it counts how
// many runes of the shorter string appear anywhere in the longer one, so
// short strings over a shared alphabet can collide. It is cheap and
// order-insensitive, not an edit distance.
func IsDuplicate(existing []*model.MemoryFact, content string) bool {
	candidate := normalizeContent(content)
	for _, fact := range existing {
		known := normalizeContent(fact.Content)
		if candidate == known {
			return true
		}
		if similarity(candidate, known) > similarityThreshold {
			return true
		}
	}
	return false
}

func normalizeContent(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// similarity returns the ratio of runes of the shorter string found
// anywhere in the longer string, over the longer string's rune length.
func similarity(a, b string) float64 {
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(longer) == 0 {
		return 0
	}

	longerSet := make(map[rune]struct{}, len(longer))
	for _, r := range longer {
		longerSet[r] = struct{}{}
	}

	matched := 0
	for _, r := range shorter {
		if _, ok := longerSet[r]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(longer))
}
