package blockkit

import (
	"regexp"
	"strings"
)

const (
	// Slack caps section text at 3000 characters.
	textMaxLen   = 3000
	headerMaxLen = 150

	truncationMarker = "…"
)

var (
	boldRe   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe = regexp.MustCompile(`(^|[^_])_([^_\n]+)_`)
	strikeRe = regexp.MustCompile(`~~(.+?)~~`)
	linkRe   = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
)

// ToMrkdwn converts common Markdown constructs to the chat platform's
// mrkdwn dialect: **bold** -> *bold*, ~~strike~~ -> ~strike~,
// [text](url) -> <url|text>. Inline code passes through unchanged.
func ToMrkdwn(markdown string) string {
	out := markdown
	out = linkRe.ReplaceAllString(out, "<$2|$1>")
	out = boldRe.ReplaceAllString(out, "*$1*")
	out = strikeRe.ReplaceAllString(out, "~$1~")
	out = italicRe.ReplaceAllString(out, "${1}_${2}_")
	return Truncate(out, textMaxLen)
}

// Truncate shortens s to at most max runes, appending a marker when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimRight(string(runes[:max-1]), " ") + truncationMarker
}
