package domain

import "time"

// UserSignals carries what the host knows about the user at serve time. It
// never leaves the device.
type UserSignals struct {
	// Segments are interest segments ordered by relevance, e.g.
	// "technology & computing-software".
	Segments []string `json:"segments"`
	// VisitedSites are recently visited URLs or hosts.
	VisitedSites []string `json:"visited_sites"`
	// Subdivision is an ISO 3166-2 code such as "US-CA". Empty if unknown.
	Subdivision string `json:"subdivision"`
	// SplitTestGroup is the active study group, if any.
	SplitTestGroup string `json:"split_test_group"`
	// Now overrides the clock when set; the serve time's location drives
	// daypart matching.
	Now time.Time `json:"now"`
}

// Country returns the ISO 3166-1 part of the subdivision code.
func (s UserSignals) Country() string {
	for i := 0; i < len(s.Subdivision); i++ {
		if s.Subdivision[i] == '-' {
			return s.Subdivision[:i]
		}
	}
	return s.Subdivision
}
