package calendar

type Merger struct{}

func NewMerger() *Merger {
	return &Merger{}
}

// Run concatenates per-source filtered event sequences in the order their
// specs appeared in the request. No deduplication across sources and no
// chronological sorting; calendar clients sort for themselves.
func (m *Merger) Run(sequences [][]Event) []Event {
	total := 0
	for _, seq := range sequences {
		total += len(seq)
	}

	merged := make([]Event, 0, total)
	for _, seq := range sequences {
		merged = append(merged, seq...)
	}

	return merged
}
