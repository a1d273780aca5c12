// Package notify emits deduplicated push notifications and operator alerts
// as launches approach. It reads the shared mission snapshot kept warm by
// the scheduler, windows it by time to launch, and sends each
// (mission, window) pair at most once per dedup lifetime.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/launchtrack/missioncontrol/alert"
	"github.com/launchtrack/missioncontrol/model"
	"github.com/launchtrack/missioncontrol/push"
	"github.com/launchtrack/missioncontrol/registry"
)

// MissionPeeker reads the current mission snapshot without refreshing it.
type MissionPeeker interface {
	Peek() ([]model.Mission, bool)
}

// RocketFetcher fetches a rocket's display name and image for notification
// enrichment.
type RocketFetcher interface {
	Rocket(ctx context.Context, ref string) (model.Rocket, error)
}

// window is one fixed lead-time notification band. A mission is in the band
// when its time to launch is within [min, max]. The band is slightly wider
// than the check cadence so a launch can't slip through between ticks.
type window struct {
	tag    registry.Tag
	min    time.Duration
	max    time.Duration
	phrase string
}

var windows = []window{
	{registry.TagTenMinutes, 9*time.Minute + 30*time.Second, 10 * time.Minute, "10 minutes"},
	{registry.TagOneHour, 59*time.Minute + 50*time.Second, time.Hour, "1 hour"},
	{registry.TagTwentyFourHours, 24*time.Hour - 10*time.Second, 24 * time.Hour, "24 hours"},
}

// statusEligible excludes missions whose schedule is not firm enough to
// announce.
func statusEligible(s model.Status) bool {
	switch s {
	case model.StatusToBeConfirmed, model.StatusToBeDetermined, model.StatusHold:
		return false
	}
	return true
}

// Notifier windows the mission snapshot and dispatches upcoming-launch
// notifications.
type Notifier struct {
	missions MissionPeeker
	rockets  RocketFetcher
	pusher   push.Sender
	alerts   alert.Sender
	dedup    registry.Registry
	clock    clock.Clock
	log      *logrus.Logger
	locks    *inFlight

	// OnEvent, when set, receives every dispatched notification for the
	// operator event feed.
	OnEvent func(event string, message string)
}

func NewNotifier(missions MissionPeeker, rockets RocketFetcher, pusher push.Sender, alerts alert.Sender, dedup registry.Registry, clk clock.Clock, log *logrus.Logger) *Notifier {
	if clk == nil {
		clk = clock.WallClock
	}
	if log == nil {
		log = logrus.New()
	}
	return &Notifier{
		missions: missions,
		rockets:  rockets,
		pusher:   pusher,
		alerts:   alerts,
		dedup:    dedup,
		clock:    clk,
		log:      log,
		locks:    newInFlight(),
	}
}

// CheckUpcoming selects missions whose time to launch falls in one of the
// notification bands and dispatches each not-yet-sent (mission, tag) pair.
// It relies on the scheduler keeping the mission cache warm; if no snapshot
// has been fetched yet the check is a no-op.
func (n *Notifier) CheckUpcoming(ctx context.Context) error {
	missions, ok := n.missions.Peek()
	if !ok || len(missions) == 0 {
		n.log.Debug("mission snapshot is empty or not fetched yet")
		return nil
	}

	now := n.clock.Now()
	for _, w := range windows {
		for i := range missions {
			m := &missions[i]
			if !statusEligible(m.Status) {
				continue
			}
			untilLaunch := m.Date.Sub(now)
			if untilLaunch < w.min || untilLaunch > w.max {
				continue
			}
			n.dispatch(ctx, m, w)
		}
	}
	return nil
}

// dispatch sends the push and mirrored operator alert for one mission and
// window. The in-flight lock is held from the enrichment fetch through the
// dedup write so two overlapping ticks cannot both pass the not-yet-sent
// check and double-send. Any failure releases the lock without recording
// the dedup key, so the dispatch is retried on the next tick.
func (n *Notifier) dispatch(ctx context.Context, m *model.Mission, w window) {
	key := registry.NotificationKey(m.ID, w.tag)
	if n.dedup.Has(key) {
		return
	}
	if !n.locks.tryAcquire(key) {
		// an overlapping tick is already sending this one
		return
	}
	defer n.locks.release(key)

	// the earlier tick may have finished while we waited on nothing; check
	// membership again under the lock
	if n.dedup.Has(key) {
		return
	}

	rocket, err := n.rockets.Rocket(ctx, m.Rocket.Ref)
	if err != nil {
		n.log.Errorf("failed to fetch rocket for mission '%v': %v", m.Name, err)
		return
	}

	heading := fmt.Sprintf("%v liftoff!", rocket.Name)
	body := fmt.Sprintf("Mission %v launches within %v!", m.Name, w.phrase)

	err = n.pusher.Send(ctx, push.Notification{
		Heading:     heading,
		Body:        body,
		ImageURL:    rocket.ImageURL,
		AudienceTag: string(w.tag),
	})
	if err != nil {
		n.log.Errorf("failed to send push notification for mission '%v': %v", m.Name, err)
		return
	}

	if err := n.alerts.Post(ctx, "Push notification sent: "+heading, body); err != nil {
		n.log.Warnf("alert delivery failed: %v", err)
	}

	if err := n.dedup.Add(key); err != nil {
		n.log.Errorf("failed to record dedup key for mission '%v': %v", m.ID, err)
	}
	n.log.Infof("sent %v notification for mission '%v'", w.tag, m.Name)
	if n.OnEvent != nil {
		n.OnEvent("notification", heading+" "+body)
	}
}
