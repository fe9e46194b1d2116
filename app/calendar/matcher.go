package calendar

import (
	"strings"

	"golang.org/x/text/cases"
)

// fold lowercases a string using Unicode case folding, so that matching
// also works for titles outside plain ASCII.
func fold(s string) string {
	return cases.Fold().String(s)
}

// MatchesAllow reports whether a title passes the allowlist. An empty
// allowlist matches every title.
func MatchesAllow(title string, allowlist []string) bool {
	if len(allowlist) == 0 {
		return true
	}

	folded := fold(title)
	for _, keyword := range allowlist {
		if strings.Contains(folded, fold(keyword)) {
			return true
		}
	}

	return false
}

// MatchesBlock reports whether a title matches any blocklist keyword. An
// empty blocklist blocks nothing.
func MatchesBlock(title string, blocklist []string) bool {
	if len(blocklist) == 0 {
		return false
	}

	folded := fold(title)
	for _, keyword := range blocklist {
		if strings.Contains(folded, fold(keyword)) {
			return true
		}
	}

	return false
}
