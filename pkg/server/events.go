package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/goccy/go-json"

	"github.com/getmockd/schemafaker/pkg/generator"
	"github.com/getmockd/schemafaker/pkg/store"
)

// Event types sent on the change stream.
const (
	EventReady  = "ready"
	EventCreate = "create"
	EventUpdate = "update"
	EventDelete = "delete"
	EventReset  = "reset"
)

const (
	eventBuffer       = 64
	eventWriteTimeout = 5 * time.Second
)

// Event is one message of the /_events stream.
type Event struct {
	Type      string              `json:"type"`
	Resource  string              `json:"resource,omitempty"`
	Key       string              `json:"key,omitempty"`
	Item      *generator.Instance `json:"item,omitempty"`
	Resources []string            `json:"resources,omitempty"`
	Time      time.Time           `json:"time"`
}

// eventHub fans store changes out to websocket subscribers. It observes
// the store; reads and errors are not streamed.
type eventHub struct {
	store.NoopObserver

	log       *slog.Logger
	resources func() []string
	accept    websocket.AcceptOptions

	mu     sync.RWMutex
	subs   map[uint64]chan []byte
	nextID atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc
}

func newEventHub(log *slog.Logger, resources func() []string) *eventHub {
	ctx, cancel := context.WithCancel(context.Background())
	return &eventHub{
		log:       log,
		resources: resources,
		accept:    websocket.AcceptOptions{InsecureSkipVerify: true},
		subs:      make(map[uint64]chan []byte),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (h *eventHub) OnCreate(resource, key string, item *generator.Instance, _ time.Duration) {
	h.publish(Event{Type: EventCreate, Resource: resource, Key: key, Item: item})
}

func (h *eventHub) OnUpdate(resource, key string, item *generator.Instance, _ time.Duration) {
	h.publish(Event{Type: EventUpdate, Resource: resource, Key: key, Item: item})
}

func (h *eventHub) OnDelete(resource, key string, _ time.Duration) {
	h.publish(Event{Type: EventDelete, Resource: resource, Key: key})
}

func (h *eventHub) OnReset(resources []string, _ time.Duration) {
	h.publish(Event{Type: EventReset, Resources: resources})
}

// Subscribers returns the number of connected clients.
func (h *eventHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// publish sends ev to every subscriber. A subscriber whose buffer is full
// misses the event.
func (h *eventHub) publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("failed to encode event", "type", ev.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		select {
		case ch <- data:
		default:
			h.log.Warn("dropping event for slow subscriber", "subscriber", id, "type", ev.Type)
		}
	}
}

// ServeHTTP upgrades the request and streams events until the client goes
// away or the hub is closed. The first message is a ready event listing the
// served resources.
func (h *eventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &h.accept)
	if err != nil {
		h.log.Debug("websocket upgrade failed", "error", err)
		return
	}

	id := h.nextID.Add(1)
	ch := make(chan []byte, eventBuffer)
	ready, _ := json.Marshal(Event{Type: EventReady, Resources: h.resources(), Time: time.Now().UTC()})
	ch <- ready

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()
	h.log.Debug("event subscriber connected", "subscriber", id)

	defer func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "")
		h.log.Debug("event subscriber disconnected", "subscriber", id)
	}()

	// The stream is one-way; CloseRead discards client messages and cancels
	// ctx once the client closes.
	ctx := conn.CloseRead(h.ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-ch:
			wctx, cancel := context.WithTimeout(ctx, eventWriteTimeout)
			err := conn.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// Close disconnects every subscriber.
func (h *eventHub) Close() {
	h.cancel()
}
