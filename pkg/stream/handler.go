package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/crewdeck/crewdeck/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

const (
	// clientBuffer is how many pending events a slow client may accumulate
	// before further events are dropped for it.
	clientBuffer      = 64
	heartbeatInterval = 25 * time.Second
)

// Handler streams collection change events to clients over server-sent
// events. Each connection subscribes to the bus for the lifetime of the
// request.
type Handler struct {
	bus *event_bus.EventBus
}

func NewHandler(bus *event_bus.EventBus) *Handler {
	return &Handler{bus: bus}
}

// Subscribe handles GET /api/stream. An optional repeated "collection" query
// parameter narrows the stream; without it every collection is streamed.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	collections, err := requestedCollections(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	projectId := r.URL.Query().Get("projectId")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := make(chan event_bus.RecordChanged, clientBuffer)
	var unsubscribes []func()
	for _, collection := range collections {
		unsubscribe := h.bus.Subscribe(collection, func(e event_bus.Event) error {
			change, ok := e.Data.(event_bus.RecordChanged)
			if !ok {
				return fmt.Errorf("unexpected event payload %T", e.Data)
			}
			if projectId != "" && change.ProjectId != "" && change.ProjectId != projectId {
				return nil
			}
			select {
			case events <- change:
			default:
				// Slow client, drop the event rather than block publishers.
				log.Warnf("dropping %s event for slow stream client", change.Collection)
			}
			return nil
		})
		unsubscribes = append(unsubscribes, unsubscribe)
	}
	defer func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
	}()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case change := <-events:
			payload, err := json.Marshal(change)
			if err != nil {
				log.Errorf("could not marshal stream event: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", change.Collection, payload)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

func requestedCollections(r *http.Request) ([]event_bus.EventType, error) {
	names := r.URL.Query()["collection"]
	if len(names) == 0 {
		return event_bus.Collections, nil
	}
	var collections []event_bus.EventType
	for _, name := range names {
		found := false
		for _, collection := range event_bus.Collections {
			if string(collection) == name {
				collections = append(collections, collection)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown collection %q", name)
		}
	}
	return collections, nil
}
