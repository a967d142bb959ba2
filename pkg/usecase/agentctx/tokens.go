package agentctx

import "unicode"

// EstimateTokens approximates the token cost of text. CJK code points
// carry roughly twice the information density of Latin characters under
// common tokenizers, so they weigh 2 against the usual 4-characters-per-
// token heuristic. Empty input costs nothing.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	weighted := 0
	for _, r := range text {
		if isCJK(r) {
			weighted += 2
		} else {
			weighted++
		}
	}

	return (weighted + 3) / 4
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
