package model

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Status is the internal mission status vocabulary used by the CMS.
type Status string

const (
	StatusSuccess        Status = "Success"
	StatusPartialSuccess Status = "PartialSuccess"
	StatusFailed         Status = "Failed"
	StatusPartialFailed  Status = "PartialFailed"
	StatusConfirmed      Status = "Confirmed"
	StatusToBeConfirmed  Status = "ToBeConfirmed"
	StatusToBeDetermined Status = "ToBeDetermined"
	StatusHold           Status = "Hold"
	StatusCanceled       Status = "Canceled"
	StatusPostponed      Status = "Postponed"
	StatusInFlight       Status = "InFlight"
)

// IsTerminal reports whether the status is a final launch outcome. Terminal
// transitions additionally increment the rocket outcome counters.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusPartialSuccess, StatusFailed, StatusPartialFailed:
		return true
	}
	return false
}

// StatusTable maps the external API's status abbreviations onto the internal
// vocabulary. Abbreviations with no entry are ignored during reconciliation.
type StatusTable map[string]Status

// DefaultStatusTable covers the abbreviations the external API is known to
// use. Additional mappings can be merged in from a YAML file, see Extend.
func DefaultStatusTable() StatusTable {
	return StatusTable{
		"In Flight":       StatusInFlight,
		"TBC":             StatusToBeConfirmed,
		"TBD":             StatusToBeDetermined,
		"Go":              StatusConfirmed,
		"Success":         StatusSuccess,
		"Failure":         StatusFailed,
		"Hold":            StatusHold,
		"Partial Failure": StatusPartialFailed,
		"Partial Success": StatusPartialSuccess,
	}
}

// Translate maps an external abbreviation to the internal status. The second
// return value is false when the abbreviation is unknown.
func (t StatusTable) Translate(abbrev string) (Status, bool) {
	s, ok := t[abbrev]
	return s, ok
}

// Extend merges mappings from a YAML file into the table. The file is a flat
// mapping of external abbreviation to internal status name. Entries for
// abbreviations already present override the defaults.
func (t StatusTable) Extend(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	extra := map[string]string{}
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return err
	}
	for abbrev, status := range extra {
		t[abbrev] = Status(status)
	}
	return nil
}
