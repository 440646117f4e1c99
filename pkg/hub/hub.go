package hub

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"relay/pkg/models"
	"relay/pkg/schedule"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

const (
	DefaultStep    = time.Second
	defaultSendBuf = 64
)

// Hub pushes status notifications to every connected viewer.
type Hub struct {
	registry *Registry
	sched    schedule.Scheduler
	step     time.Duration
	sendBuf  int
	logger   *zap.Logger
	nextID   atomic.Uint64
}

// New builds a hub whose bus-driven broadcasts are staggered by step.
func New(sched schedule.Scheduler, step time.Duration, logger *zap.Logger) *Hub {
	if step < 0 {
		step = DefaultStep
	}
	return &Hub{
		registry: NewRegistry(),
		sched:    sched,
		step:     step,
		sendBuf:  defaultSendBuf,
		logger:   logger.With(zap.String("component", "hub")),
	}
}

// OnWebhookEvent subscribes the hub to the event bus.
func (h *Hub) OnWebhookEvent(n models.Notification) {
	h.Broadcast(n, h.step)
}

// Broadcast schedules payload for member i of the current registry at i*step.
// Liveness is checked when each delivery fires, not now.
func (h *Hub) Broadcast(payload any, step time.Duration) {
	for i, v := range h.registry.Snapshot() {
		h.sched.After(time.Duration(i)*step, func() {
			h.deliver(v, payload)
		})
	}
}

func (h *Hub) deliver(v *Viewer, payload any) {
	if !v.Open() {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("marshal payload", zap.Uint64("viewer", v.id), zap.Error(err))
		return
	}
	if err := v.enqueue(data); err != nil {
		h.logger.Debug("delivery dropped", zap.Uint64("viewer", v.id), zap.Error(err))
	}
}

// Register adds conn to the live set and starts its writer.
func (h *Hub) Register(conn Conn) *Viewer {
	v := newViewer(h.nextID.Add(1), conn, h.sendBuf)
	h.registry.Add(v)

	go func() {
		if err := v.writePump(websocket.TextMessage); err != nil {
			h.logger.Debug("write failed", zap.Uint64("viewer", v.id), zap.Error(err))
			h.Unregister(v)
		}
	}()

	h.logger.Info("viewer connected",
		zap.Uint64("viewer", v.id), zap.Int("viewers", h.registry.Len()))
	return v
}

func (h *Hub) Unregister(v *Viewer) {
	removed := h.registry.Remove(v)
	v.close()
	if removed {
		h.logger.Info("viewer disconnected",
			zap.Uint64("viewer", v.id), zap.Int("viewers", h.registry.Len()))
	}
}

// HandleConn serves one websocket connection until it closes. Viewers never
// send anything meaningful; inbound frames are read and discarded.
func (h *Hub) HandleConn(conn Conn) {
	v := h.Register(conn)
	defer h.Unregister(v)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) ViewerCount() int {
	return h.registry.Len()
}

// Stop closes every live viewer.
func (h *Hub) Stop() {
	for _, v := range h.registry.Snapshot() {
		h.Unregister(v)
	}
}
