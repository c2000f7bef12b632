package sanitizer

import (
	"strings"
	"unicode"
)

// MaxDescriptionRunes caps free text stored on a booking.
const MaxDescriptionRunes = 1000

// CollapseSpace trims s and folds every whitespace run into one space.
// Control characters other than whitespace are dropped.
func CollapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingSpace := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case unicode.IsControl(r):
		default:
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

func NormalizeName(name string) string {
	return CollapseSpace(name)
}

// NormalizeDescription collapses whitespace and cuts the result to
// MaxDescriptionRunes runes.
func NormalizeDescription(s string) string {
	s = CollapseSpace(s)
	if n := 0; len(s) > MaxDescriptionRunes {
		for i := range s {
			if n == MaxDescriptionRunes {
				return strings.TrimRightFunc(s[:i], unicode.IsSpace)
			}
			n++
		}
	}
	return s
}

func NormalizeEmail(email string) string {
	return emailPipeline.Apply(email)
}

func NormalizeCode(code string) string {
	return codePipeline.Apply(code)
}
