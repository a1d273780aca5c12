package reconcile

import (
	"context"
	"time"

	"github.com/launchtrack/missioncontrol/alert"
	"github.com/launchtrack/missioncontrol/model"
	"github.com/launchtrack/missioncontrol/registry"
)

// staleAfter is how long after its scheduled date a production mission is
// kept before being archived.
const staleAfter = 24 * time.Hour

// ArchiveStale archives production missions whose date is 24 hours or more
// in the past. The archived dedup set guards against double-archiving within
// the same tick batch, before the patch becomes visible in the next cache
// refresh.
func (e *Engine) ArchiveStale(ctx context.Context) error {
	missions, err := e.missions.Get(ctx)
	if err != nil {
		return err
	}

	now := e.clock.Now()
	for i := range missions {
		m := &missions[i]
		if m.Archived || m.Environment != model.EnvironmentProduction {
			continue
		}
		if now.Sub(m.Date) < staleAfter {
			continue
		}

		key := registry.ChangeKey(m.ID, registry.KindArchived)
		if e.dedup.Has(key) {
			continue
		}

		if err := e.store.Patch(ctx, m.ID, map[string]interface{}{"archived": true}); err != nil {
			e.log.Errorf("failed to archive mission '%v': %v", m.Name, err)
			continue
		}
		if err := e.alerts.PostEmbed(ctx, alert.MissionEmbed(m)); err != nil {
			e.log.Warnf("alert delivery failed: %v", err)
		}
		if err := e.dedup.Add(key); err != nil {
			e.log.Errorf("failed to record dedup key for mission '%v': %v", m.ID, err)
		}
		e.log.Infof("archived mission '%v'", m.Name)
		e.emit("archived", "Archived mission: "+m.Name)
	}
	return nil
}
