package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/launchtrack/missioncontrol/push"
)

var errSnapshotNotReady = errors.New("mission snapshot is not available yet")

func (a *App) initRouter() {
	router := mux.NewRouter()

	router.HandleFunc("/api/v1/health", a.GetHealth).Methods("GET")
	router.HandleFunc("/api/v1/missions", a.GetMissions).Methods("GET")
	router.HandleFunc("/api/v1/reconcile", a.PostReconcile).Methods("POST")
	router.HandleFunc("/api/v1/archive", a.PostArchive).Methods("POST")
	router.HandleFunc("/api/v1/notifications/test", a.PostTestNotification).Methods("POST")

	a.router = router
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func handleError(err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	payload, _ := json.Marshal(errorResponse{Message: err.Error()})
	w.Write(payload)
}

func writeSuccess(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	payload, _ := json.Marshal(successResponse{Success: true, Message: message})
	w.Write(payload)
}

// GetHealth reports when each source cache was last refreshed.
func (a *App) GetHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":            "ok",
		"missionsLastFetch": a.missions.LastFetch(),
	}
	w.Header().Set("Content-Type", "application/json")
	payload, _ := json.Marshal(health)
	w.Write(payload)
}

// GetMissions returns the current mission snapshot without refreshing it.
func (a *App) GetMissions(w http.ResponseWriter, r *http.Request) {
	missions, ok := a.missions.Peek()
	if !ok {
		handleError(errSnapshotNotReady, w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	payload, _ := json.Marshal(missions)
	w.Write(payload)
}

// PostReconcile triggers one reconciliation pass outside the schedule.
func (a *App) PostReconcile(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.ReconcileAll(r.Context()); err != nil {
		handleError(err, w)
		return
	}
	writeSuccess(w, "reconciliation pass complete")
}

// PostArchive triggers one archival pass outside the schedule.
func (a *App) PostArchive(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.ArchiveStale(r.Context()); err != nil {
		handleError(err, w)
		return
	}
	writeSuccess(w, "archival pass complete")
}

// PostTestNotification sends a push notification with the message provided,
// for verifying the delivery pipeline end to end.
func (a *App) PostTestNotification(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
		Body    string `json:"body"`
		Tag     string `json:"tag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handleError(err, w)
		return
	}
	if body.Tag == "" {
		body.Tag = "TEN_MINUTES"
	}
	pushClient := push.New(a.config.Push.URL, a.config.Push.AppID, a.config.Push.APIKey)
	err := pushClient.Send(r.Context(), push.Notification{
		Heading:     body.Message,
		Body:        body.Body,
		AudienceTag: body.Tag,
	})
	if err != nil {
		handleError(err, w)
		return
	}
	writeSuccess(w, "test notification sent")
}
