package calendar

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run applies a spec's keyword policy to one parsed feed. An event
// survives iff its summary passes the allowlist and does not match the
// blocklist. The relative order of surviving events is preserved and
// retained events are passed through unchanged.
func (f *Filterer) Run(events []Event, spec Spec) []Event {
	kept := make([]Event, 0, len(events))
	for _, event := range events {
		if !MatchesAllow(event.Summary, spec.Allowlist) {
			continue
		}
		if MatchesBlock(event.Summary, spec.Blocklist) {
			continue
		}
		kept = append(kept, event)
	}

	return kept
}
