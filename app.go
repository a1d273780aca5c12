package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/juju/clock"

	"github.com/launchtrack/missioncontrol/alert"
	"github.com/launchtrack/missioncontrol/cache"
	"github.com/launchtrack/missioncontrol/cms"
	"github.com/launchtrack/missioncontrol/launchapi"
	"github.com/launchtrack/missioncontrol/model"
	"github.com/launchtrack/missioncontrol/notify"
	"github.com/launchtrack/missioncontrol/push"
	"github.com/launchtrack/missioncontrol/reconcile"
	"github.com/launchtrack/missioncontrol/registry"
	"github.com/launchtrack/missioncontrol/schedule"
)

// App is one instance of the reconciliation and notification engine: the two
// source caches, the dedup registry, the engine and notifier, the scheduler
// that drives them, and the admin HTTP surface.
type App struct {
	config    *Config
	router    *mux.Router
	ws        chan event
	alerts    alert.Sender
	dedup     registry.Registry
	missions  *cache.Source[[]model.Mission]
	launches  *cache.Launches
	engine    *reconcile.Engine
	notifier  *notify.Notifier
	scheduler *schedule.Scheduler
}

// NewApp wires the engine together. It will use a Redis-backed dedup
// registry if one is reachable, otherwise the in-memory registry; the
// in-memory registry only persists while the process is running.
func NewApp(configPath string) *App {
	initLog()

	config := LoadConfig(configPath)

	statuses := model.DefaultStatusTable()
	if config.StatusTable != "" {
		if err := statuses.Extend(config.StatusTable); err != nil {
			log.Errorf("failed to extend status table from %v: %v", config.StatusTable, err)
		}
	}

	alerts := alert.NewWebhook(config.Alerts.WebhookURL)

	// attempt to connect to redis - if not found then use the in-memory registry
	var dedup registry.Registry
	redisReg := registry.NewRedisRegistry(config.Redis.Addr, config.Redis.Password, config.Redis.DB)
	if err := redisReg.Ping(); err == nil {
		fmt.Printf("🚨 Connected to Redis dedup registry at %v\n", config.Redis.Addr)
		dedup = redisReg
	} else {
		fmt.Printf("Couldn't connect to Redis at %v. Using in-memory dedup registry.\n", config.Redis.Addr)
		dedup = registry.NewMemoryRegistry()
	}

	cmsClient := cms.New(config.CMS.BaseURL, config.CMS.Dataset, config.CMS.Token)
	apiClient := launchapi.New(config.LaunchAPI.URL)
	pushClient := push.New(config.Push.URL, config.Push.AppID, config.Push.APIKey)

	escalate := func(err error) {
		log.Error(err)
		if alertErr := alerts.Post(context.Background(), "ENGINE FAILURE: source fetch failed", err.Error()); alertErr != nil {
			log.Warnf("failed to escalate: %v", alertErr)
		}
	}

	missions := cache.NewSource[[]model.Mission]("missions", config.Intervals.MissionTTL, cmsClient.Missions, clock.WallClock, escalate)
	launches := cache.NewLaunches(apiClient.FetchFirstPage, apiClient.FetchAll, config.Intervals.FirstPageTTL, config.Intervals.FullCrawlTTL, clock.WallClock, escalate)

	engine := reconcile.NewEngine(missions, launches, cmsClient, alerts, dedup, statuses, clock.WallClock, log)
	notifier := notify.NewNotifier(missions, cmsClient, pushClient, alerts, dedup, clock.WallClock, log)

	a := &App{
		config:   config,
		alerts:   alerts,
		dedup:    dedup,
		missions: missions,
		launches: launches,
		engine:   engine,
		notifier: notifier,
	}

	a.scheduler = schedule.New(clock.WallClock, log)
	a.scheduler.OnFailure = func(task string, err error) {
		if alertErr := alerts.Post(context.Background(), "ENGINE FAILURE in task '"+task+"'", err.Error()); alertErr != nil {
			log.Warnf("failed to escalate: %v", alertErr)
		}
	}
	a.scheduler.Add("reconcile", config.Intervals.Reconcile, engine.ReconcileAll)
	a.scheduler.Add("archive", config.Intervals.Archive, engine.ArchiveStale)
	a.scheduler.Add("upcoming", config.Intervals.Upcoming, notifier.CheckUpcoming)
	a.scheduler.Add("preflight", config.Intervals.Preflight, notifier.CheckPreflight)
	a.scheduler.Add("clear-change-caches", config.Intervals.ChangeClear, func(ctx context.Context) error {
		for _, c := range registry.ChangeCaches() {
			if err := dedup.Clear(c); err != nil {
				return err
			}
		}
		return nil
	})
	a.scheduler.Add("clear-all-caches", config.Intervals.FullClear, func(ctx context.Context) error {
		return dedup.ClearAll()
	})

	a.initRouter()
	a.initWebSocket()

	engine.OnEvent = a.broadcast
	notifier.OnEvent = a.broadcast

	return a
}

// Run starts the scheduler and the admin HTTP server. It blocks until the
// context is cancelled, then waits for in-flight ticks to finish.
func (a *App) Run(ctx context.Context) error {
	a.scheduler.Start(ctx)

	server := &http.Server{Addr: ":" + a.config.Port, Handler: a.router}
	go func() {
		<-ctx.Done()
		server.Close()
	}()

	log.Infof("Admin server listening on port %v", a.config.Port)
	err := server.ListenAndServe()
	a.scheduler.Wait()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
