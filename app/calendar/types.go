package calendar

import (
	"time"

	ics "github.com/arran4/golang-ical"
)

// Spec describes one calendar source and its keyword policy.
type Spec struct {
	URL       string   `json:"url" yaml:"url"`
	Allowlist []string `json:"allowlist,omitempty" yaml:"allowlist"`
	Blocklist []string `json:"blocklist,omitempty" yaml:"blocklist"`
}

// Request is the top-level combined calendar request. The order of
// Calendars defines the merge order of the output document.
type Request struct {
	Calendars []Spec `json:"calendars" yaml:"calendars"`
	Short     bool   `json:"short,omitempty" yaml:"-"`
}

// Event is one VEVENT extracted from a parsed feed. The underlying
// component is kept verbatim so surviving events re-serialize losslessly.
type Event struct {
	UID     string
	Summary string
	Start   time.Time
	End     time.Time

	component *ics.VEvent
}
