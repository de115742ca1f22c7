package turn

// MostRecentSummary returns the first summary in RecentSummaries whose
// intent name matches the turn's intent. Summaries are ordered
// most-recent-first, so the first match is the freshest checkpoint for
// this intent. Returns nil when no summary matches.
func (t *Turn) MostRecentSummary() *Summary {
	for i := range t.RecentSummaries {
		if t.RecentSummaries[i].IntentName == t.IntentName {
			return &t.RecentSummaries[i]
		}
	}
	return nil
}

// SummaryValue returns the named slot's value from the summary, nil
// when absent.
func (s *Summary) SummaryValue(name string) *string {
	if s == nil || s.Slots == nil {
		return nil
	}
	return s.Slots[name]
}
