package calendar

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Normalize returns the canonical form of a request used for short link
// keying. Keywords are case-folded, trimmed, de-duplicated and sorted, so
// the same policy written with different casing, whitespace or keyword
// order maps to the same stored configuration. Calendar order is kept:
// it defines the merge order of the output, so a reordered request is a
// different configuration.
func Normalize(req Request) Request {
	calendars := make([]Spec, 0, len(req.Calendars))
	for _, spec := range req.Calendars {
		calendars = append(calendars, Spec{
			URL:       strings.TrimSpace(spec.URL),
			Allowlist: normalizeKeywords(spec.Allowlist),
			Blocklist: normalizeKeywords(spec.Blocklist),
		})
	}

	return Request{Calendars: calendars}
}

func normalizeKeywords(keywords []string) []string {
	normalized := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		keyword = fold(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		normalized = append(normalized, keyword)
	}

	slices.Sort(normalized)
	return slices.Compact(normalized)
}

// EncodeConfig serializes a normalized request into the canonical string
// persisted by the short link cache. The Short flag is not part of the
// configuration.
func EncodeConfig(req Request) (string, error) {
	data, err := json.Marshal(Request{Calendars: req.Calendars})
	if err != nil {
		return "", fmt.Errorf("failed to encode configuration: %w", err)
	}
	return string(data), nil
}

// DecodeConfig restores a request from its stored canonical string.
func DecodeConfig(config string) (Request, error) {
	var req Request
	if err := json.Unmarshal([]byte(config), &req); err != nil {
		return Request{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return req, nil
}
