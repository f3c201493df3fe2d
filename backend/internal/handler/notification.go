package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/agora-dev/agora/shared/logger"
	mw "github.com/agora-dev/agora/shared/middleware"
)

const sseHeartbeat = 25 * time.Second

// StreamNotifications pushes the caller's notifications as server-sent events
// until the client disconnects.
func (h *Handler) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Please sign-in", http.StatusUnauthorized)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	sub := h.notifications.Subscribe(user.Id)
	defer h.notifications.Unsubscribe(sub)

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case n := <-sub.C:
			data, err := json.Marshal(n)
			if err != nil {
				logger.Log.Error("failed to encode notification", "component", "notifications", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", n.Type, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
