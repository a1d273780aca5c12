package registry

import "testing"

func TestMemoryRegistry_AddAndHas(t *testing.T) {
	r := NewMemoryRegistry()

	key := ChangeKey("mission-1", KindDateChanged)
	if r.Has(key) {
		t.Fatalf("empty registry reported membership")
	}

	if err := r.Add(key); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Has(key) {
		t.Fatalf("added key not found")
	}

	// the same mission under a different kind is a different key
	if r.Has(ChangeKey("mission-1", KindWindowChanged)) {
		t.Fatalf("membership leaked across kinds")
	}
}

func TestMemoryRegistry_NotificationKeysAreScopedByTag(t *testing.T) {
	r := NewMemoryRegistry()

	r.Add(NotificationKey("mission-1", TagTenMinutes))

	if !r.Has(NotificationKey("mission-1", TagTenMinutes)) {
		t.Fatalf("added key not found")
	}
	if r.Has(NotificationKey("mission-1", TagOneHour)) {
		t.Fatalf("membership leaked across tags")
	}
	if r.Has(NotificationKey("mission-2", TagTenMinutes)) {
		t.Fatalf("membership leaked across missions")
	}
}

func TestMemoryRegistry_ClearIsPerCache(t *testing.T) {
	r := NewMemoryRegistry()

	dateKey := ChangeKey("mission-1", KindDateChanged)
	archivedKey := ChangeKey("mission-1", KindArchived)
	r.Add(dateKey)
	r.Add(archivedKey)

	if err := r.Clear(string(KindDateChanged)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Has(dateKey) {
		t.Fatalf("cleared cache still has members")
	}
	if !r.Has(archivedKey) {
		t.Fatalf("clearing one cache affected another")
	}
}

func TestMemoryRegistry_ClearAll(t *testing.T) {
	r := NewMemoryRegistry()

	r.Add(ChangeKey("mission-1", KindDateChanged))
	r.Add(NotificationKey("mission-1", TagTenMinutes))

	if err := r.ClearAll(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Has(ChangeKey("mission-1", KindDateChanged)) || r.Has(NotificationKey("mission-1", TagTenMinutes)) {
		t.Fatalf("ClearAll left members behind")
	}
}

func TestChangeCaches_CoverEveryKindExceptArchived(t *testing.T) {
	caches := ChangeCaches()
	if len(caches) != 4 {
		t.Fatalf("expected 4 change caches, got %v", len(caches))
	}
	for _, c := range caches {
		if c == string(KindArchived) || c == "notifications" {
			t.Fatalf("cache '%v' must only clear on the daily cadence", c)
		}
	}
}
