package calendar

import (
	ics "github.com/arran4/golang-ical"

	"github.com/fical/fical/app/cfg"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run wraps merged events into a single valid VCALENDAR document, even
// when the events originated from multiple source documents.
func (g *Generator) Run(events []Event) string {
	cal := ics.NewCalendar()
	cal.SetProductId("-//fical " + cfg.Get().Version + "//EN")
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")

	for _, event := range events {
		if event.component != nil {
			cal.AddVEvent(event.component)
		}
	}

	return cal.Serialize()
}
