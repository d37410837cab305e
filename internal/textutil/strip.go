package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var whitespaceRun = regexp.MustCompile(`[\r\n\t ]+`)

// StripTags removes every HTML tag from s. The contents of script and style
// elements are dropped entirely, entities are decoded, and runs of spaces,
// tabs and line breaks collapse to a single space.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapse(s)
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapse(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if isRawElement(name) {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if isRawElement(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isRawElement(name []byte) bool {
	a := atom.Lookup(name)
	return a == atom.Script || a == atom.Style
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Truncate returns at most n characters of s. It never splits a multi-byte
// character.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Excerpt strips tags from s and keeps the first n characters.
func Excerpt(s string, n int) string {
	return Truncate(StripTags(s), n)
}

// SanitizeField normalizes single-line text input: tags are removed and
// whitespace is collapsed and trimmed.
func SanitizeField(s string) string {
	return StripTags(s)
}
