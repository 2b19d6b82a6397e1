package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"livenotes/internal/services"
	"livenotes/internal/storage/interfaces"
)

// BackendInfo describes the storage backend selected at startup.
type BackendInfo interface {
	Kind() string
	IsFallback() bool
	Usage(ctx context.Context) (interfaces.Usage, error)
}

type HealthController struct {
	backend   BackendInfo
	rooms     *services.RoomRegistry
	startTime time.Time
}

type usageResponse struct {
	UsedBytes  uint64 `json:"used_bytes"`
	QuotaBytes uint64 `json:"quota_bytes"`
}

type healthResponse struct {
	Status        string         `json:"status"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Backend       string         `json:"backend"`
	Fallback      bool           `json:"fallback"`
	Usage         *usageResponse `json:"usage,omitempty"`
	Rooms         int            `json:"rooms"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Backend:       hc.backend.Kind(),
		Fallback:      hc.backend.IsFallback(),
		Rooms:         len(hc.rooms.Rooms()),
	}
	if usage, err := hc.backend.Usage(r.Context()); err == nil {
		resp.Usage = &usageResponse{UsedBytes: usage.UsedBytes, QuotaBytes: usage.QuotaBytes}
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

func NewHealthController(backend BackendInfo, rooms *services.RoomRegistry) *HealthController {
	return &HealthController{
		backend:   backend,
		rooms:     rooms,
		startTime: time.Now(),
	}
}
