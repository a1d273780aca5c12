package model

import "time"

// DateUpdateMethod controls whether the engine is allowed to overwrite a
// mission's scheduled date. Operators pin a date by setting it to manual.
type DateUpdateMethod string

const (
	DateUpdateAuto   DateUpdateMethod = "auto"
	DateUpdateManual DateUpdateMethod = "manual"
)

// Environment separates curated production records from drafts.
type Environment string

const (
	EnvironmentProduction  Environment = "production"
	EnvironmentDevelopment Environment = "development"
)

// Mission is a curated launch entry in the CMS. It is the system of record:
// operators create and edit missions, and the engine only writes back the
// small set of fields that reconciliation is authorised to change (date,
// probability, window, status, archived flag).
type Mission struct {
	ID               string           `json:"_id"`
	Name             string           `json:"name"`
	Date             time.Time        `json:"date"`
	Status           Status           `json:"status"`
	Probability      *int             `json:"probability,omitempty"`
	WindowStart      *time.Time       `json:"windowStart,omitempty"`
	WindowEnd        *time.Time       `json:"windowEnd,omitempty"`
	Archived         bool             `json:"archived"`
	Environment      Environment      `json:"environment"`
	DateUpdateMethod DateUpdateMethod `json:"dateUpdateMethod"`
	ExternalID       string           `json:"apiMissionID"`
	Livestream       string           `json:"livestream,omitempty"`
	Description      string           `json:"description,omitempty"`
	Rocket           RocketRef        `json:"rocket"`
	Boosters         []BoosterRef     `json:"boosters,omitempty"`
	PatchImageURL    string           `json:"patchImageUrl,omitempty"`
}

// RocketRef is the subset of the referenced rocket document that missions
// carry inline. The full rocket document lives in the CMS.
type RocketRef struct {
	Ref  string `json:"_ref"`
	Name string `json:"name,omitempty"`
}

type BoosterRef struct {
	Ref string `json:"_ref"`
}

// HasWindow reports whether both ends of the launch window are set.
func (m *Mission) HasWindow() bool {
	return m.WindowStart != nil && m.WindowEnd != nil
}
