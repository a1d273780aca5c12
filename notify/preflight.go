package notify

import (
	"context"
	"fmt"
	"time"
)

// preflight bands: a final-hour check and a last-call check shortly before
// launch. Each band is as wide as the check cadence so a mission passes
// through it once.
var preflightBands = []struct {
	min, max time.Duration
	closing  bool
}{
	{59*time.Minute + 50*time.Second, time.Hour, false},
	{19*time.Minute + 50*time.Second, 20 * time.Minute, true},
}

// rockets that must not fly without an assigned booster document
var boosterTracked = map[string]bool{
	"Falcon 9 Block 5": true,
	"Falcon Heavy":     true,
}

// CheckPreflight alerts operators about curation gaps on missions that are
// about to launch: a missing livestream reference, or a missing booster
// assignment on rockets whose boosters are tracked. Operator alerts only;
// end users are never notified about missing data.
func (n *Notifier) CheckPreflight(ctx context.Context) error {
	missions, ok := n.missions.Peek()
	if !ok {
		return nil
	}

	now := n.clock.Now()
	for i := range missions {
		m := &missions[i]
		untilLaunch := m.Date.Sub(now)

		for _, band := range preflightBands {
			if untilLaunch < band.min || untilLaunch > band.max {
				continue
			}

			if m.Livestream == "" {
				msg := fmt.Sprintf("Mission %q has no livestream attached.", m.Name)
				if band.closing {
					msg = fmt.Sprintf("Mission %q is approaching launch and still has no livestream attached.", m.Name)
				}
				if err := n.alerts.Post(ctx, msg, ""); err != nil {
					n.log.Warnf("alert delivery failed: %v", err)
				}
			}

			if boosterTracked[m.Rocket.Name] && len(m.Boosters) == 0 {
				msg := fmt.Sprintf("Mission %q with rocket %v has no booster assigned.", m.Name, m.Rocket.Name)
				if band.closing {
					msg = fmt.Sprintf("Mission %q with rocket %v is approaching launch and still has no booster assigned.", m.Name, m.Rocket.Name)
				}
				if err := n.alerts.Post(ctx, msg, ""); err != nil {
					n.log.Warnf("alert delivery failed: %v", err)
				}
			}
		}
	}
	return nil
}
