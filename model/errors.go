package model

import "fmt"

type SnapshotUnavailableError struct {
	Source string
}

func (e *SnapshotUnavailableError) Error() string {
	return "no snapshot available for source '" + e.Source + "' and refresh failed"
}

type StatusCodeError struct {
	URL  string
	Code int
}

func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("request to '%v' returned status code %v", e.URL, e.Code)
}

type MissionNotFoundError struct {
	ID string
}

func (e *MissionNotFoundError) Error() string {
	return "mission with id '" + e.ID + "' not found"
}

type RocketNotFoundError struct {
	Ref string
}

func (e *RocketNotFoundError) Error() string {
	return "rocket with id '" + e.Ref + "' not found"
}
