package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ug-admin-search/internal/logger"
	"github.com/ug-admin-search/internal/search"
)

// Default intervals for the event stream.
const (
	DefaultPollInterval      = time.Second
	DefaultHeartbeatInterval = 30 * time.Second
)

// EventsHandler streams engine changes via Server-Sent Events
type EventsHandler struct {
	Holder            *search.Holder
	PollInterval      time.Duration
	HeartbeatInterval time.Duration
}

// EventNotification is the data of every event
type EventNotification struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// Events sends an "engine" event with the current stats on connect and after
// every swap, plus periodic heartbeats, until the client goes away.
func (h *EventsHandler) Events(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		logger.L().Debug("sse_write_deadline", "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	poll, beat := h.PollInterval, h.HeartbeatInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	if beat <= 0 {
		beat = DefaultHeartbeatInterval
	}

	var seen uint64
	sendEngine := func() error {
		gen := h.Holder.Generation()
		e := h.Holder.Engine()
		if e == nil || gen == seen {
			return nil
		}
		seen = gen
		return h.send(w, rc, "engine", StatsResponse{Stats: e.Stats(), Generation: gen})
	}

	if err := h.send(w, rc, "connected", nil); err != nil {
		return
	}
	if err := sendEngine(); err != nil {
		return
	}

	pollTicker := time.NewTicker(poll)
	defer pollTicker.Stop()
	beatTicker := time.NewTicker(beat)
	defer beatTicker.Stop()

	ctx := r.Context()
	for {
		var err error
		select {
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			err = sendEngine()
		case <-beatTicker.C:
			err = h.send(w, rc, "heartbeat", nil)
		}
		if err != nil {
			logger.L().Debug("sse_closed", "error", err)
			return
		}
	}
}

func (h *EventsHandler) send(w http.ResponseWriter, rc *http.ResponseController, eventType string, data any) error {
	payload, err := json.Marshal(EventNotification{Type: eventType, Timestamp: time.Now(), Data: data})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload); err != nil {
		return err
	}
	return rc.Flush()
}
