package tui

import (
	"regexp"
	"strings"
)

// truncateEnd shortens s to at most limit runes, ending in an ellipsis when
// anything was cut.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return string(r[:limit-1]) + "…"
}

// truncateMiddle keeps both ends of s around a single ellipsis. Image URLs
// carry meaning at the host and at the file name.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	n := len(r)
	if n <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	keep := limit - 1
	left := keep / 2
	right := keep - left
	if left == 0 {
		return "…" + string(r[n-right:])
	}
	return string(r[:left]) + "…" + string(r[n-right:])
}

// firstN returns at most n leading items. n <= 0 means all.
func firstN(items []string, n int) []string {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}

// orDash substitutes "-" for a missing value.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var (
	mdInline = strings.NewReplacer(
		`\`, `\\`,
		"`", "\\`",
		"*", `\*`,
		"_", `\_`,
		"[", `\[`,
		"]", `\]`,
		"<", `\<`,
		">", `\>`,
		"#", `\#`,
		"|", `\|`,
		"~", `\~`,
		"&", `\&`,
		"\r\n", " ",
		"\n", " ",
		"\r", " ",
	)
	// a leading "-", "+" or "12." would open a nested list
	mdBlockStart = regexp.MustCompile(`^([-+]|\d+[.)])`)
)

// escapeMarkdown makes record text render literally inside the detail
// markdown. The result is always a single trimmed line; leading indentation
// would turn a list item into a code block.
func escapeMarkdown(s string) string {
	s = strings.TrimSpace(mdInline.Replace(s))
	return mdBlockStart.ReplaceAllStringFunc(s, func(m string) string {
		return m[:len(m)-1] + `\` + m[len(m)-1:]
	})
}
