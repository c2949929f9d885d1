package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ber2minsin/intime/internal/config"
	"github.com/ber2minsin/intime/internal/database"
	"github.com/ber2minsin/intime/internal/logging"
	"github.com/ber2minsin/intime/internal/models"
)

// EventSource is the live feed of recorded focus events, served over the
// websocket stream endpoint. The processor implements it.
type EventSource interface {
	Subscribe() chan models.EventRecord
	Unsubscribe(listener chan models.EventRecord)
}

type Handler struct {
	config   *config.Config
	repo     *database.Repository
	events   EventSource
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewHandler(cfg *config.Config, repo *database.Repository, events EventSource) *Handler {
	return &Handler{
		config: cfg,
		repo:   repo,
		events: events,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local tool, all origins allowed
			},
		},
		log: *logging.WithComponent("web"),
	}
}

func (h *Handler) Routes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/events", h.handleEvents).Methods("GET")
	api.HandleFunc("/events/latest", h.handleLatestEvent).Methods("GET")
	api.HandleFunc("/events/stream", h.handleEventStream)
	api.HandleFunc("/screenshots/nearest", h.handleNearestScreenshot).Methods("GET")
	api.HandleFunc("/status", h.handleStatus).Methods("GET")

	router.HandleFunc("/health", h.handleHealth).Methods("GET")
	router.HandleFunc("/", h.handleIndex).Methods("GET")
}

// handleEvents serves focus events in a time range. start_ms and end_ms
// are epoch milliseconds; the stored resolution is seconds, so both are
// truncated. The range defaults to the last 24 hours.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	now := time.Now()
	startMs := now.Add(-24 * time.Hour).UnixMilli()
	endMs := now.UnixMilli()

	if s := query.Get("start_ms"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid start_ms: %s", s), http.StatusBadRequest)
			return
		}
		startMs = v
	}
	if e := query.Get("end_ms"); e != "" {
		v, err := strconv.ParseInt(e, 10, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid end_ms: %s", e), http.StatusBadRequest)
			return
		}
		endMs = v
	}

	limit := 0
	if l := query.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}

	events, err := h.repo.EventsInRange(startMs/1000, endMs/1000, limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch events: %v", err), http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []models.EventRecord{}
	}

	h.respondJSON(w, events)
}

func (h *Handler) handleLatestEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.repo.LatestEvent()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch latest event: %v", err), http.StatusInternalServerError)
		return
	}

	if event == nil {
		h.respondError(w, http.StatusNotFound, "no events found")
		return
	}

	h.respondJSON(w, event)
}

// handleNearestScreenshot serves the screenshot closest in time to ts_ms,
// optionally filtered by app_id. The image travels base64-encoded in the
// png field.
func (h *Handler) handleNearestScreenshot(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	tsStr := query.Get("ts_ms")
	if tsStr == "" {
		http.Error(w, "ts_ms query parameter is required", http.StatusBadRequest)
		return
	}
	ts, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid ts_ms: %s", tsStr), http.StatusBadRequest)
		return
	}

	var appID *int64
	if a := query.Get("app_id"); a != "" {
		v, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid app_id: %s", a), http.StatusBadRequest)
			return
		}
		appID = &v
	}

	shot, err := h.repo.NearestScreenshot(ts/1000, appID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch screenshot: %v", err), http.StatusInternalServerError)
		return
	}

	if shot == nil {
		h.respondError(w, http.StatusNotFound, "no screenshot found")
		return
	}

	h.respondJSON(w, shot)
}

// handleEventStream upgrades to a websocket and forwards recorded focus
// events as they happen, starting with the most recent one on file.
func (h *Handler) handleEventStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates := h.events.Subscribe()
	defer h.events.Unsubscribe(updates)

	if latest, err := h.repo.LatestEvent(); err == nil && latest != nil {
		if err := conn.WriteJSON(latest); err != nil {
			return
		}
	}

	for rec := range updates {
		if err := conn.WriteJSON(rec); err != nil {
			h.log.Debug().Err(err).Msg("websocket client gone")
			return
		}
	}
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	latestEvent, _ := h.repo.LatestEvent()

	status := map[string]interface{}{
		"running":          true,
		"capture_interval": h.config.Capture.Interval.String(),
		"database_path":    h.config.Database.Path,
	}

	if latestEvent != nil {
		status["latest_event"] = latestEvent
	}

	h.respondJSON(w, status)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	html := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>intime</title>
</head>
<body>
    <h1>intime</h1>
    <p>Local activity telemetry collector.</p>
    <ul>
        <li><code>GET /api/events?start_ms=&amp;end_ms=&amp;limit=</code></li>
        <li><code>GET /api/events/latest</code></li>
        <li><code>GET /api/events/stream</code> (websocket)</li>
        <li><code>GET /api/screenshots/nearest?ts_ms=&amp;app_id=</code></li>
        <li><code>GET /api/status</code></li>
        <li><code>GET /health</code></li>
    </ul>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func (h *Handler) respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("encoding response failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		h.log.Error().Err(err).Msg("encoding error response failed")
	}
}
