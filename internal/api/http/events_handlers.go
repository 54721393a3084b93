package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/events"
)

// EventSource is the read side of the submission outbox.
type EventSource interface {
	Since(ctx context.Context, after int64, limit int) ([]events.Event, error)
}

type eventView struct {
	Seq       int64           `json:"seq"`
	SiteID    string          `json:"siteId"`
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
}

// GET /events?after=0&limit=100
//
// Consumers page through the outbox by passing the returned next cursor back
// as after.
func ListEventsHandler(src EventSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		after, err := strconv.ParseInt(strings.TrimSpace(q.Get("after")), 10, 64)
		if err != nil || after < 0 {
			after = 0
		}
		list, err := src.Since(r.Context(), after, parseIntDefault(q.Get("limit"), 100))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		out := make([]eventView, 0, len(list))
		next := after
		for _, e := range list {
			data := json.RawMessage(e.DataJSON)
			if !json.Valid(data) {
				data, _ = json.Marshal(e.DataJSON)
			}
			out = append(out, eventView{
				Seq: e.Seq, SiteID: e.SiteID, Type: e.Type, Key: e.Key,
				Data: data, CreatedAt: time.Unix(e.CreatedAt, 0).UTC(),
			})
			next = e.Seq
		}
		writeOK(w, http.StatusOK, map[string]any{"events": out, "next": next})
	}
}
