package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/larderapp/larder/internal/ports/inbound"
	"github.com/larderapp/larder/internal/ports/outbound"
)

// ProgressEvent is one stage update pushed to a watching client
type ProgressEvent struct {
	JobID  string `json:"job_id"`
	Stage  string `json:"stage"`
	Detail string `json:"detail,omitempty"`
}

// ProgressBroker routes import stage updates to websocket subscribers.
// Publishing to a job nobody watches is a no-op; a slow subscriber
// drops events rather than blocking the import.
type ProgressBroker struct {
	mu   sync.Mutex
	subs map[uuid.UUID]chan ProgressEvent
}

var _ outbound.ProgressNotifier = (*ProgressBroker)(nil)

// NewProgressBroker creates a new progress broker
func NewProgressBroker() *ProgressBroker {
	return &ProgressBroker{subs: make(map[uuid.UUID]chan ProgressEvent)}
}

// Publish sends a stage update to the job's subscriber, if any
func (b *ProgressBroker) Publish(jobID uuid.UUID, stage string, detail string) {
	if jobID == uuid.Nil {
		return
	}

	b.mu.Lock()
	ch, ok := b.subs[jobID]
	b.mu.Unlock()
	if !ok {
		return
	}

	select {
	case ch <- ProgressEvent{JobID: jobID.String(), Stage: stage, Detail: detail}:
	default:
	}
}

// Subscribe registers a watcher for a job. The returned cancel func
// must be called when the watcher goes away.
func (b *ProgressBroker) Subscribe(jobID uuid.UUID) (<-chan ProgressEvent, func()) {
	ch := make(chan ProgressEvent, 16)

	b.mu.Lock()
	b.subs[jobID] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subs, jobID)
		b.mu.Unlock()
	}
	return ch, cancel
}

// ProgressHandler serves the websocket endpoint for import progress
type ProgressHandler struct {
	broker   *ProgressBroker
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(broker *ProgressBroker, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		broker: broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Single-user app; cross-origin websockets are fine
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Watch handles GET /api/v1/import/{jobID}/progress. It streams stage
// events until the job reaches a terminal stage or the client leaves.
// The import itself is not cancelled by a disconnect.
func (h *ProgressHandler) Watch(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events, cancel := h.broker.Subscribe(jobID)
	defer cancel()

	// Drain client frames so close messages are noticed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event := <-events:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
			if event.Stage == inbound.StageComplete || event.Stage == inbound.StageError {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
