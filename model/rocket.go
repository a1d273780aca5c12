package model

// Rocket is the CMS rocket document referenced by missions. The engine only
// ever reads the display fields and increments the outcome counters; all
// other content is operator curated.
type Rocket struct {
	ID                        string `json:"_id"`
	Name                      string `json:"name"`
	ImageURL                  string `json:"imageUrl,omitempty"`
	SuccessfulLaunches        int    `json:"successfull_launches"`
	FailedLaunches            int    `json:"failed_launches"`
	PartialSuccessfulLaunches int    `json:"partial_successfull_launches"`
	PartialFailedLaunches     int    `json:"partial_failed_launches"`
}

// CounterField returns the rocket document field that tallies the given
// terminal launch outcome, or "" if the status is not a terminal outcome.
func CounterField(s Status) string {
	switch s {
	case StatusSuccess:
		return "successfull_launches"
	case StatusFailed:
		return "failed_launches"
	case StatusPartialSuccess:
		return "partial_successfull_launches"
	case StatusPartialFailed:
		return "partial_failed_launches"
	}
	return ""
}
