package model

import "time"

// ExternalLaunch is one result from the external launch-tracking API. The
// engine treats these records as read-only: they are fetched in bulk, cached,
// and diffed against missions, never written back.
type ExternalLaunch struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Status      ExternalStatus `json:"status"`
	Net         time.Time      `json:"net"`
	WindowStart *time.Time     `json:"window_start"`
	WindowEnd   *time.Time     `json:"window_end"`
	Probability *int           `json:"probability"`
	Rocket      ExternalRocket `json:"rocket"`
}

// ExternalStatus is the status object the external API attaches to a launch.
// Only the abbreviation takes part in reconciliation.
type ExternalStatus struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Abbrev string `json:"abbrev"`
}

type ExternalRocket struct {
	Configuration RocketConfiguration `json:"configuration"`
}

type RocketConfiguration struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

// LaunchPage is one page of the external API's paginated listing. Next is a
// full URL, or empty when the listing is exhausted.
type LaunchPage struct {
	Count    int              `json:"count"`
	Next     string           `json:"next"`
	Previous string           `json:"previous"`
	Results  []ExternalLaunch `json:"results"`
}
