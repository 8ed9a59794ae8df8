package controllers

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"fivemon/internal/services"
	"fivemon/internal/storage"
	"fivemon/internal/tracker"
)

type HealthController struct {
	service   services.MonitorServiceInterface
	tracker   *tracker.Tracker
	store     storage.StoreInterface
	startTime time.Time
}

type healthResponse struct {
	Status         string  `json:"status"`
	Uptime         string  `json:"uptime"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	ServerOnline   bool    `json:"server_online"`
	TrackedPlayers int     `json:"tracked_players"`
	Players        int     `json:"players"`
	Events         int     `json:"events"`
	PingSamples    int     `json:"ping_samples"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	counts, err := hc.store.Counts(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:         "ok",
		Uptime:         formatDuration(uptime),
		UptimeSeconds:  uptime.Seconds(),
		ServerOnline:   hc.service.ServerOnline(),
		TrackedPlayers: hc.tracker.Count(),
		Players:        counts.Players,
		Events:         counts.Events,
		PingSamples:    counts.PingSamples,
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.MonitorServiceInterface, trk *tracker.Tracker, store storage.StoreInterface) *HealthController {
	return &HealthController{
		service:   service,
		tracker:   trk,
		store:     store,
		startTime: time.Now(),
	}
}
