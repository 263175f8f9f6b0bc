package extraction

import (
	"regexp"
	"strings"
)

var (
	scriptStyleRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)\s*>`)
	tagRe         = regexp.MustCompile(`<[^>]+>`)
	spaceRunRe    = regexp.MustCompile(`[\s\p{Zs}]+`)

	entityReplacer = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&yen;", "¥",
	)
)

// StripHTML reduces markup to text: tags become a single space, a handful of
// named entities are resolved and whitespace runs collapse to one space.
func StripHTML(html string) string {
	text := scriptStyleRe.ReplaceAllString(html, " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = entityReplacer.Replace(text)
	return CollapseSpace(text)
}

// CollapseSpace replaces runs of whitespace, including full-width spaces,
// with one ASCII space and trims the ends.
func CollapseSpace(s string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}
