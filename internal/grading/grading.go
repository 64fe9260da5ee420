// Package grading checks a submitted answer against a question's options.
package grading

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/mathquest/practice/internal/question"
)

// Check reports whether answer is correct for q. The second return is
// false when the question cannot be graded server-side (open-ended
// questions carry no answer key), in which case the caller should trust
// its own verdict.
func Check(q question.Question, answer string) (correct, graded bool) {
	if len(q.Options) == 0 {
		return false, false
	}
	norm := normalize(answer)
	if norm == "" {
		return false, true
	}
	for _, o := range q.Options {
		if matches(norm, o) {
			return o.IsCorrect, true
		}
	}
	// No option matched: wrong answer, but still gradable.
	return false, true
}

// matches accepts the option letter ("a"), the option text, or a
// numerically equal rendering of it ("42.0" matches "42").
func matches(norm string, o question.Option) bool {
	if norm == normalize(o.OptionLetter) {
		return true
	}
	text := normalize(o.OptionText)
	if norm == text {
		return true
	}
	av, aok := parseFloatLoose(norm)
	tv, tok := parseFloatLoose(text)
	return aok && tok && math.Abs(av-tv) < 1e-9
}

// normalize casefolds and trims punctuation and extra spaces.
func normalize(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsPunct(r):
			// skip
		default:
			if space && len(out) > 0 {
				out = append(out, ' ')
			}
			space = false
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}

func parseFloatLoose(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if sp := strings.Fields(s); len(sp) > 0 {
		if v, err := strconv.ParseFloat(sp[0], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
