package calendar

import (
	"fmt"
	"strings"
)

type FetchErrorKind string

const (
	FetchUnreachable FetchErrorKind = "unreachable"
	FetchTimeout     FetchErrorKind = "timeout"
	FetchHTTPStatus  FetchErrorKind = "http_status"
	FetchTooLarge    FetchErrorKind = "too_large"
)

// FetchError describes a failed retrieval of a single calendar source.
type FetchError struct {
	URL        string
	Kind       FetchErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchTimeout:
		return fmt.Sprintf("timed out fetching %s: %v", e.URL, e.Err)
	case FetchHTTPStatus:
		return fmt.Sprintf("unexpected status %d fetching %s", e.StatusCode, e.URL)
	case FetchTooLarge:
		return fmt.Sprintf("calendar at %s exceeds the size limit", e.URL)
	default:
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError describes a source whose payload was not a valid calendar.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse calendar from %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidConfigError is returned when a request fails shape validation
// before any network call is made.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return e.Reason
}

// SourceError records the failure of one calendar source within a request.
type SourceError struct {
	URL string
	Err error
}

// AllSourcesFailedError is returned when every source in a request failed
// to contribute events.
type AllSourcesFailedError struct {
	Errors []SourceError
}

func (e *AllSourcesFailedError) Error() string {
	reasons := make([]string, 0, len(e.Errors))
	for _, se := range e.Errors {
		reasons = append(reasons, se.Err.Error())
	}
	return fmt.Sprintf("all %d calendar sources failed: %s", len(e.Errors), strings.Join(reasons, "; "))
}
