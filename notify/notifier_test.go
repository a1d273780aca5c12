/**
Tests for the upcoming-launch notifier. Each test pins the clock and places
missions at exact offsets from it, so the window boundaries are checked to
the second.
*/

package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/juju/clock/testclock"

	"github.com/launchtrack/missioncontrol/alert"
	"github.com/launchtrack/missioncontrol/model"
	"github.com/launchtrack/missioncontrol/push"
	"github.com/launchtrack/missioncontrol/registry"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeMissions struct {
	missions []model.Mission
	ok       bool
}

func (f *fakeMissions) Peek() ([]model.Mission, bool) {
	return f.missions, f.ok
}

type fakeRockets struct {
	rockets map[string]model.Rocket
	fail    bool
}

func (f *fakeRockets) Rocket(ctx context.Context, ref string) (model.Rocket, error) {
	if f.fail {
		return model.Rocket{}, fmt.Errorf("store unreachable")
	}
	r, ok := f.rockets[ref]
	if !ok {
		return model.Rocket{}, &model.RocketNotFoundError{Ref: ref}
	}
	return r, nil
}

type fakePush struct {
	sent []push.Notification
	fail bool
}

func (f *fakePush) Send(ctx context.Context, n push.Notification) error {
	if f.fail {
		return fmt.Errorf("push provider unreachable")
	}
	f.sent = append(f.sent, n)
	return nil
}

type fakeAlerts struct {
	posts []string
}

func (f *fakeAlerts) Post(ctx context.Context, title, body string) error {
	f.posts = append(f.posts, title)
	return nil
}

func (f *fakeAlerts) PostEmbed(ctx context.Context, embed alert.Embed) error {
	return nil
}

func upcomingMission(id string, untilLaunch time.Duration) model.Mission {
	return model.Mission{
		ID:     id,
		Name:   "Starlink Group 8-1",
		Date:   testNow.Add(untilLaunch),
		Status: model.StatusConfirmed,
		Rocket: model.RocketRef{Ref: "rocket-1", Name: "Falcon 9 Block 5"},
	}
}

func newTestNotifier(missions []model.Mission) (*Notifier, *fakePush, *fakeAlerts) {
	rockets := &fakeRockets{rockets: map[string]model.Rocket{
		"rocket-1": {ID: "rocket-1", Name: "Falcon 9 Block 5", ImageURL: "https://img.example/falcon9.png"},
	}}
	pusher := &fakePush{}
	alerts := &fakeAlerts{}
	n := NewNotifier(&fakeMissions{missions, true}, rockets, pusher, alerts, registry.NewMemoryRegistry(), testclock.NewClock(testNow), nil)
	return n, pusher, alerts
}

func TestNotifier_TenMinuteBandBoundaries(t *testing.T) {
	missions := []model.Mission{
		upcomingMission("in-low", 9*time.Minute+30*time.Second),  // inside, lower edge
		upcomingMission("in-high", 10*time.Minute),               // inside, upper edge
		upcomingMission("below", 9*time.Minute+29*time.Second),   // one second too close
		upcomingMission("above", 10*time.Minute+time.Second),     // one second too far
	}
	n, pusher, _ := newTestNotifier(missions)

	if err := n.CheckUpcoming(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pusher.sent) != 2 {
		t.Fatalf("expected 2 notifications, got %v", len(pusher.sent))
	}
	for _, sent := range pusher.sent {
		if sent.AudienceTag != string(registry.TagTenMinutes) {
			t.Fatalf("wrong audience tag: %v", sent.AudienceTag)
		}
	}
}

func TestNotifier_EachWindowUsesItsOwnTag(t *testing.T) {
	missions := []model.Mission{
		upcomingMission("soon", 10*time.Minute),
		upcomingMission("hour", time.Hour),
		upcomingMission("day", 24*time.Hour),
	}
	n, pusher, _ := newTestNotifier(missions)

	n.CheckUpcoming(context.Background())

	if len(pusher.sent) != 3 {
		t.Fatalf("expected 3 notifications, got %v", len(pusher.sent))
	}
	tags := map[string]bool{}
	for _, sent := range pusher.sent {
		tags[sent.AudienceTag] = true
	}
	for _, tag := range registry.Tags() {
		if !tags[string(tag)] {
			t.Fatalf("no notification sent for window %v", tag)
		}
	}
}

func TestNotifier_UnconfirmedStatusesAreExcluded(t *testing.T) {
	for _, status := range []model.Status{model.StatusHold, model.StatusToBeConfirmed, model.StatusToBeDetermined} {
		m := upcomingMission("m1", 10*time.Minute)
		m.Status = status
		n, pusher, _ := newTestNotifier([]model.Mission{m})

		n.CheckUpcoming(context.Background())

		if len(pusher.sent) != 0 {
			t.Fatalf("a mission with status %v was announced", status)
		}
	}
}

func TestNotifier_NotificationIsAtMostOncePerWindow(t *testing.T) {
	n, pusher, _ := newTestNotifier([]model.Mission{upcomingMission("m1", 10*time.Minute)})

	n.CheckUpcoming(context.Background())
	n.CheckUpcoming(context.Background())
	n.CheckUpcoming(context.Background())

	if len(pusher.sent) != 1 {
		t.Fatalf("expected exactly one notification, got %v", len(pusher.sent))
	}
}

func TestNotifier_MirroredOperatorAlertIsSent(t *testing.T) {
	n, pusher, alerts := newTestNotifier([]model.Mission{upcomingMission("m1", 10*time.Minute)})

	n.CheckUpcoming(context.Background())

	if len(pusher.sent) != 1 || len(alerts.posts) != 1 {
		t.Fatalf("expected one push and one mirrored alert, got %v/%v", len(pusher.sent), len(alerts.posts))
	}
	if pusher.sent[0].ImageURL != "https://img.example/falcon9.png" {
		t.Fatalf("enrichment image missing from push: %v", pusher.sent[0])
	}
}

func TestNotifier_EnrichmentFailureIsRetried(t *testing.T) {
	rockets := &fakeRockets{fail: true, rockets: map[string]model.Rocket{
		"rocket-1": {ID: "rocket-1", Name: "Falcon 9 Block 5"},
	}}
	pusher := &fakePush{}
	n := NewNotifier(
		&fakeMissions{[]model.Mission{upcomingMission("m1", 10*time.Minute)}, true},
		rockets, pusher, &fakeAlerts{}, registry.NewMemoryRegistry(), testclock.NewClock(testNow), nil)

	// enrichment fails: nothing is sent and no dedup state is recorded
	n.CheckUpcoming(context.Background())
	if len(pusher.sent) != 0 {
		t.Fatalf("a notification was sent despite the enrichment failure")
	}

	// the store recovers and the notification goes out on the next tick
	rockets.fail = false
	n.CheckUpcoming(context.Background())
	if len(pusher.sent) != 1 {
		t.Fatalf("expected the notification to be retried, got %v", len(pusher.sent))
	}
}

func TestNotifier_PushFailureIsRetried(t *testing.T) {
	n, pusher, alerts := newTestNotifier([]model.Mission{upcomingMission("m1", 10*time.Minute)})
	pusher.fail = true

	n.CheckUpcoming(context.Background())
	if len(alerts.posts) != 0 {
		t.Fatalf("a mirrored alert was sent despite the push failure")
	}

	pusher.fail = false
	n.CheckUpcoming(context.Background())
	n.CheckUpcoming(context.Background())

	if len(pusher.sent) != 1 {
		t.Fatalf("expected exactly one notification after recovery, got %v", len(pusher.sent))
	}
}

func TestNotifier_EmptySnapshotIsANoOp(t *testing.T) {
	n := NewNotifier(&fakeMissions{nil, false}, &fakeRockets{}, &fakePush{}, &fakeAlerts{}, registry.NewMemoryRegistry(), testclock.NewClock(testNow), nil)

	if err := n.CheckUpcoming(context.Background()); err != nil {
		t.Fatalf("an unwarmed cache should not be an error, got %v", err)
	}
}
