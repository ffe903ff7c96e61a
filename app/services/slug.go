package services

import (
	"strings"
	"unicode"
)

// Slugify lower-cases s and joins runs of letters and digits with single
// dashes. Non-ASCII letters are dropped.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func slugOr(slug, name string) string {
	if s := strings.TrimSpace(slug); s != "" {
		return s
	}
	return Slugify(name)
}
