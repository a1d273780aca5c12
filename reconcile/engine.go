// Package reconcile implements the field-level diffing between curated
// missions and their matched external launch records. Each authorised field
// is checked independently; a divergence produces a patch back to the
// content store, an operator alert, and a dedup entry so the same divergence
// is not re-announced while the patch propagates back into the cache.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/launchtrack/missioncontrol/alert"
	"github.com/launchtrack/missioncontrol/model"
	"github.com/launchtrack/missioncontrol/registry"
)

// ContentStore is the slice of the CMS client the engine writes through.
type ContentStore interface {
	Patch(ctx context.Context, id string, fields map[string]interface{}) error
	Rocket(ctx context.Context, ref string) (model.Rocket, error)
}

// MissionSource yields the current mission snapshot, refreshing if stale.
type MissionSource interface {
	Get(ctx context.Context) ([]model.Mission, error)
}

// LaunchSource yields the current external snapshot keyed by external id.
type LaunchSource interface {
	Get(ctx context.Context) (map[string]model.ExternalLaunch, error)
}

// Engine reads both source caches, diffs matched pairs, and emits the
// resulting patches and alerts.
type Engine struct {
	missions MissionSource
	launches LaunchSource
	store    ContentStore
	alerts   alert.Sender
	dedup    registry.Registry
	statuses model.StatusTable
	clock    clock.Clock
	log      *logrus.Logger

	// OnEvent, when set, receives every emitted change for the operator
	// event feed.
	OnEvent func(event string, message string)
}

func NewEngine(missions MissionSource, launches LaunchSource, store ContentStore, alerts alert.Sender, dedup registry.Registry, statuses model.StatusTable, clk clock.Clock, log *logrus.Logger) *Engine {
	if clk == nil {
		clk = clock.WallClock
	}
	if log == nil {
		log = logrus.New()
	}
	return &Engine{
		missions: missions,
		launches: launches,
		store:    store,
		alerts:   alerts,
		dedup:    dedup,
		statuses: statuses,
		clock:    clk,
		log:      log,
	}
}

func (e *Engine) emit(event, message string) {
	if e.OnEvent != nil {
		e.OnEvent(event, message)
	}
}

// ReconcileAll diffs every non-archived mission against its matched external
// record. Missions with no match are skipped; per-mission failures are
// logged and do not stop the pass.
func (e *Engine) ReconcileAll(ctx context.Context) error {
	missions, err := e.missions.Get(ctx)
	if err != nil {
		return err
	}
	launches, err := e.launches.Get(ctx)
	if err != nil {
		return err
	}

	for i := range missions {
		m := &missions[i]
		if m.Archived {
			continue
		}
		ext, ok := launches[m.ExternalID]
		if !ok {
			e.log.Debugf("mission '%v' has no matching external record", m.Name)
			continue
		}
		e.checkMission(ctx, m, ext)
	}
	return nil
}

// checkMission applies the independent field checks in a fixed order. Every
// check sees the same external record; one check's outcome never gates
// another.
func (e *Engine) checkMission(ctx context.Context, m *model.Mission, ext model.ExternalLaunch) {
	configName := ext.Rocket.Configuration.Name

	// date: never overwrite a manually pinned date
	if !m.Date.Equal(ext.Net) && m.DateUpdateMethod == model.DateUpdateAuto && !m.Archived {
		e.updateAndNotify(ctx, m.ID, registry.KindDateChanged,
			fmt.Sprintf("Date changed for mission: %v | %v", m.Name, configName),
			map[string]interface{}{"date": ext.Net.Format(time.RFC3339)},
		)
	}

	// probability: an external null asserts nothing and never overwrites
	if ext.Probability != nil && !equalIntPtr(m.Probability, ext.Probability) {
		e.updateAndNotify(ctx, m.ID, registry.KindProbabilityChanged,
			fmt.Sprintf("Probability changed for mission: %v | %v", m.Name, configName),
			map[string]interface{}{"probability": *ext.Probability},
		)
	}

	// window: both ends are patched together so readers never see a torn
	// window
	if !equalTimePtr(m.WindowStart, ext.WindowStart) || !equalTimePtr(m.WindowEnd, ext.WindowEnd) {
		e.updateAndNotify(ctx, m.ID, registry.KindWindowChanged,
			fmt.Sprintf("WindowStart and WindowEnd changed for mission: %v | %v", m.Name, configName),
			map[string]interface{}{
				"windowStart": formatTimePtr(ext.WindowStart),
				"windowEnd":   formatTimePtr(ext.WindowEnd),
			},
		)
	}

	// status: unknown external vocabulary is skipped silently
	if mapped, ok := e.statuses.Translate(ext.Status.Abbrev); ok && mapped != m.Status {
		e.checkStatus(ctx, m, mapped, configName)
	}
}

// checkStatus patches a status transition and, when the new status is a
// terminal launch outcome, increments the matching counter on the referenced
// rocket. The dedup key covers both writes: it is recorded only once both
// have succeeded, so a failure retries the whole transition next tick.
// Re-patching an already applied status is harmless.
func (e *Engine) checkStatus(ctx context.Context, m *model.Mission, mapped model.Status, configName string) {
	key := registry.ChangeKey(m.ID, registry.KindStatusChanged)
	if e.dedup.Has(key) {
		return
	}

	if err := e.store.Patch(ctx, m.ID, map[string]interface{}{"status": string(mapped)}); err != nil {
		e.log.Errorf("failed to patch status for mission '%v': %v", m.Name, err)
		return
	}

	if field := model.CounterField(mapped); field != "" && m.Rocket.Ref != "" {
		rocket, err := e.store.Rocket(ctx, m.Rocket.Ref)
		if err != nil {
			e.log.Errorf("failed to load rocket '%v' for counter update: %v", m.Rocket.Ref, err)
			return
		}
		// read-increment-write; the dedup gate keeps overlapping ticks from
		// double counting
		if err := e.store.Patch(ctx, rocket.ID, map[string]interface{}{field: counterValue(rocket, mapped) + 1}); err != nil {
			e.log.Errorf("failed to increment counter '%v' on rocket '%v': %v", field, rocket.ID, err)
			return
		}
	}

	message := fmt.Sprintf("Status changed to %v for mission: %v | %v", mapped, m.Name, configName)
	if err := e.alerts.Post(ctx, message, ""); err != nil {
		e.log.Warnf("alert delivery failed: %v", err)
	}
	if err := e.dedup.Add(key); err != nil {
		e.log.Errorf("failed to record dedup key for mission '%v': %v", m.ID, err)
	}
	e.emit("statusChange", message)
}

// updateAndNotify is the shared commit path for the date, probability, and
// window checks. The dedup key is added only after the patch succeeds; a
// failed patch is retried on the next pass.
func (e *Engine) updateAndNotify(ctx context.Context, missionID string, kind registry.Kind, message string, fields map[string]interface{}) {
	key := registry.ChangeKey(missionID, kind)
	if e.dedup.Has(key) {
		return
	}

	if err := e.store.Patch(ctx, missionID, fields); err != nil {
		e.log.Errorf("failed to patch mission '%v' (%v): %v", missionID, kind, err)
		return
	}
	if err := e.alerts.Post(ctx, message, ""); err != nil {
		e.log.Warnf("alert delivery failed: %v", err)
	}
	if err := e.dedup.Add(key); err != nil {
		e.log.Errorf("failed to record dedup key for mission '%v': %v", missionID, err)
	}
	e.emit("change", message)
}

func counterValue(r model.Rocket, s model.Status) int {
	switch s {
	case model.StatusSuccess:
		return r.SuccessfulLaunches
	case model.StatusFailed:
		return r.FailedLaunches
	case model.StatusPartialSuccess:
		return r.PartialSuccessfulLaunches
	case model.StatusPartialFailed:
		return r.PartialFailedLaunches
	}
	return 0
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
