// Package registry provides the dedup registry: a family of named sets used
// to guarantee at-most-once side effects per mission and change kind, or per
// mission and notification window. Two implementations exist, an in-memory
// store and a Redis store; both behave exactly the same. The in-memory store
// is the baseline: its contents are lost on restart, which downgrades the
// guarantee to at-most-once per process lifetime.
package registry

// Kind names a reconciliation change kind. Each kind has its own set so the
// clearing cadences can treat them as a group.
type Kind string

const (
	KindArchived           Kind = "archived"
	KindDateChanged        Kind = "date-changed"
	KindWindowChanged      Kind = "window-changed"
	KindProbabilityChanged Kind = "probability-changed"
	KindStatusChanged      Kind = "status-changed"
)

// Tag names an upcoming-launch notification window. The same values are used
// as the push audience tag.
type Tag string

const (
	TagTenMinutes      Tag = "TEN_MINUTES"
	TagOneHour         Tag = "ONE_HOUR"
	TagTwentyFourHours Tag = "TWENTY_FOUR_HOURS"
)

// Tags lists the notification windows in ascending lead time.
func Tags() []Tag {
	return []Tag{TagTenMinutes, TagOneHour, TagTwentyFourHours}
}

const notificationCache = "notifications"

// Key identifies one set member: the set it belongs to and the member value.
type Key struct {
	Cache  string
	Member string
}

// ChangeKey builds the dedup key for a field change on a mission.
func ChangeKey(missionID string, kind Kind) Key {
	return Key{Cache: string(kind), Member: missionID}
}

// NotificationKey builds the dedup key for an upcoming-launch notification.
func NotificationKey(missionID string, tag Tag) Key {
	return Key{Cache: notificationCache, Member: missionID + "|" + string(tag)}
}

// ChangeCaches lists the sets cleared on the short cadence. Clearing them
// allows legitimate re-notification when a field flips back and forth.
func ChangeCaches() []string {
	return []string{
		string(KindDateChanged),
		string(KindWindowChanged),
		string(KindProbabilityChanged),
		string(KindStatusChanged),
	}
}

// AllCaches lists every set the registry manages.
func AllCaches() []string {
	return append(ChangeCaches(), string(KindArchived), notificationCache)
}

// Registry is the store of dedup sets. Implementations must be safe for
// concurrent use.
type Registry interface {
	Has(key Key) bool
	Add(key Key) error
	Clear(cache string) error
	ClearAll() error
	Ping() error
}
