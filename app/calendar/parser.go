package calendar

import (
	"bytes"

	ics "github.com/arran4/golang-ical"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Run parses raw ICS bytes into the ordered event list of the document.
// The original VEVENT component is kept on each event so re-serialization
// is lossless.
func (p *Parser) Run(data []byte) ([]Event, error) {
	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	components := cal.Events()
	events := make([]Event, 0, len(components))
	for _, ve := range components {
		events = append(events, p.normalizeEvent(ve))
	}

	return events, nil
}

func (p *Parser) normalizeEvent(ve *ics.VEvent) Event {
	event := Event{component: ve}

	if prop := ve.GetProperty(ics.ComponentPropertyUniqueId); prop != nil {
		event.UID = prop.Value
	}
	if prop := ve.GetProperty(ics.ComponentPropertySummary); prop != nil {
		event.Summary = prop.Value
	}

	// Missing or unparseable times stay zero; filtering only needs the
	// summary and the raw component.
	if start, err := ve.GetStartAt(); err == nil {
		event.Start = start
	}
	if end, err := ve.GetEndAt(); err == nil {
		event.End = end
	}

	return event
}
