package moderation

import (
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	ViolationSpamPattern = "spam_pattern"
	ViolationURLDetected = "url_detected"

	// spamRunLength is the number of identical consecutive characters treated as spam.
	spamRunLength = 5
)

// DefaultBannedWords is used when no list is configured.
var DefaultBannedWords = []string{"욕설", "비방", "스팸", "광고", "불법", "음란", "폭력", "혐오"}

var urlRe = regexp.MustCompile(`https?://[^\s]+`)

// Result is the outcome of filtering one message.
type Result struct {
	IsClean         bool     `json:"isClean"`
	FilteredContent string   `json:"filteredContent"`
	Violations      []string `json:"violations"`
}

// Filter is a stateless text classifier. Safe for concurrent use.
type Filter struct {
	words []string
}

func NewFilter(bannedWords []string) *Filter {
	words := make([]string, 0, len(bannedWords))
	for _, w := range bannedWords {
		w = norm.NFC.String(strings.TrimSpace(w))
		if w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		words = append(words, DefaultBannedWords...)
	}
	return &Filter{words: words}
}

// Check classifies content. Banned words are matched case-insensitively and masked with
// one '*' per character in FilteredContent; violations are listed in a stable order:
// banned words (list order), spam_pattern, url_detected.
func (f *Filter) Check(content string) Result {
	// Hangul typed on some platforms arrives decomposed; compare in NFC.
	content = norm.NFC.String(content)

	violations := []string{}
	filtered := []rune(content)
	folded := foldRunes(filtered)

	for _, word := range f.words {
		if maskWord(filtered, folded, foldRunes([]rune(word)).runes) {
			violations = append(violations, word)
		}
	}

	if hasRepeatedRun(content, spamRunLength) {
		violations = append(violations, ViolationSpamPattern)
	}

	if urlRe.MatchString(content) {
		violations = append(violations, ViolationURLDetected)
	}

	return Result{
		IsClean:         len(violations) == 0,
		FilteredContent: string(filtered),
		Violations:      violations,
	}
}

// foldedText is the case-folded form of a rune slice. origin[i] is the index of
// the source rune that produced runes[i]; one rune may fold to several (ß -> ss).
type foldedText struct {
	runes  []rune
	origin []int
}

func foldRunes(text []rune) foldedText {
	fold := cases.Fold()
	out := foldedText{runes: make([]rune, 0, len(text)), origin: make([]int, 0, len(text))}
	for i, r := range text {
		for _, fr := range fold.String(string(r)) {
			out.runes = append(out.runes, fr)
			out.origin = append(out.origin, i)
		}
	}
	return out
}

// maskWord stars every source rune covered by a folded match of word and
// reports whether there was any match.
func maskWord(text []rune, folded foldedText, word []rune) bool {
	n := len(word)
	if n == 0 {
		return false
	}
	hit := false
	for i := 0; i+n <= len(folded.runes); {
		if !slices.Equal(folded.runes[i:i+n], word) {
			i++
			continue
		}
		hit = true
		for j := folded.origin[i]; j <= folded.origin[i+n-1]; j++ {
			text[j] = '*'
		}
		i += n
	}
	return hit
}

// hasRepeatedRun reports whether any character other than a line terminator occurs
// n or more times in a row.
func hasRepeatedRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if isLineTerminator(r) {
			run = 0
			continue
		}
		if run > 0 && r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}
