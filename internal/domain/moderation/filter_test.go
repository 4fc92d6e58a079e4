package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterCleanMessage(t *testing.T) {
	res := NewFilter(nil).Check("내일 7시에 한남 3번코트 어떠세요?")

	assert.True(t, res.IsClean)
	assert.Empty(t, res.Violations)
	assert.Equal(t, "내일 7시에 한남 3번코트 어떠세요?", res.FilteredContent)
}

func TestFilterBannedWordIsMaskedAndReported(t *testing.T) {
	res := NewFilter(nil).Check("이건 광고 아니에요, 광고!")

	assert.False(t, res.IsClean)
	assert.Equal(t, []string{"광고"}, res.Violations)
	assert.Equal(t, "이건 ** 아니에요, **!", res.FilteredContent)
}

func TestFilterBannedWordCaseInsensitive(t *testing.T) {
	f := NewFilter([]string{"spam"})

	res := f.Check("no SPAM here, Spam there")

	assert.Equal(t, []string{"spam"}, res.Violations)
	assert.Equal(t, "no **** here, **** there", res.FilteredContent)
}

func TestFilterRepeatedCharacterPattern(t *testing.T) {
	cases := []struct {
		in   string
		spam bool
	}{
		{"aaaaa", true},
		{"aaaa", false},
		{"ㅋㅋㅋㅋㅋㅋ", true},
		{"this is 총총총총총 spam", true},
		{"aa\naaa", false},
	}
	f := NewFilter(nil)
	for _, tc := range cases {
		res := f.Check(tc.in)
		assert.Equal(t, tc.spam, contains(res.Violations, ViolationSpamPattern), tc.in)
	}
}

func TestFilterSpamExampleCarriesBannedWordAndRun(t *testing.T) {
	f := NewFilter([]string{"총총"})

	res := f.Check("this is 총총총총총 spam")

	assert.False(t, res.IsClean)
	assert.Equal(t, []string{"총총", ViolationSpamPattern}, res.Violations)
	assert.Equal(t, "this is ****총 spam", res.FilteredContent)
}

func TestFilterURLDetected(t *testing.T) {
	res := NewFilter(nil).Check("visit http://x.com")

	assert.False(t, res.IsClean)
	assert.Equal(t, []string{ViolationURLDetected}, res.Violations)

	assert.True(t, NewFilter(nil).Check("visit x.com").IsClean)
}

func TestFilterDecomposedHangulStillMatches(t *testing.T) {
	// "광고" in NFD (conjoining jamo)
	nfd := "\u1100\u116a\u11bc\u1100\u1169"

	res := NewFilter(nil).Check(nfd)

	assert.Equal(t, []string{"광고"}, res.Violations)
	assert.Equal(t, "**", res.FilteredContent)
}

func TestFilterDefaultsWhenListEmpty(t *testing.T) {
	f := NewFilter([]string{"  ", ""})
	assert.Equal(t, DefaultBannedWords, f.words)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func TestFilterMasksWordsWhoseFoldChangesLength(t *testing.T) {
	f := NewFilter([]string{"straße"})

	res := f.Check("STRASSE and Straße")

	assert.Equal(t, []string{"straße"}, res.Violations)
	assert.Equal(t, "******* and ******", res.FilteredContent)
}
