package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/HeroDappDev/Claude-Fun/internal/curve"
	"github.com/HeroDappDev/Claude-Fun/internal/domain"
	"github.com/HeroDappDev/Claude-Fun/internal/observability"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	sendBuffer     = 16
)

// Hub fans launch updates out to websocket subscribers of that launch.
// It implements ledger.Publisher.
type Hub struct {
	mu       sync.RWMutex
	subs     map[string]map[*subscriber]struct{}
	upgrader websocket.Upgrader
	policy   curve.Policy
	logger   *zap.Logger
}

type subscriber struct {
	conn     *websocket.Conn
	launchID string
	send     chan []byte
	once     sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

// NewHub creates a hub that renders launches with policy prices.
func NewHub(policy curve.Policy, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs: make(map[string]map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		policy: policy,
		logger: logger,
	}
}

// Publish sends the launch to its subscribers. Subscribers that cannot keep
// up are disconnected rather than blocking the ledger.
func (h *Hub) Publish(l *domain.Launch) {
	msg, err := json.Marshal(newLaunchResponse(l, h.policy))
	if err != nil {
		h.logger.Error("marshal launch update", zap.String("launch_id", l.ID), zap.Error(err))
		return
	}

	h.mu.RLock()
	var slow []*subscriber
	for sub := range h.subs[l.ID] {
		select {
		case sub.send <- msg:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		h.logger.Warn("dropping slow subscriber", zap.String("launch_id", l.ID))
		h.remove(sub)
	}
}

// Subscribers returns the number of subscribers of launchID.
func (h *Hub) Subscribers(launchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[launchID])
}

// Serve upgrades the request and streams updates of launch until the client
// disconnects. initial is sent first.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, initial *domain.Launch) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sub := &subscriber{conn: conn, launchID: initial.ID, send: make(chan []byte, sendBuffer)}
	if msg, err := json.Marshal(newLaunchResponse(initial, h.policy)); err == nil {
		sub.send <- msg
	}
	h.add(sub)

	go h.writePump(sub)
	h.readPump(sub)
	return nil
}

func (h *Hub) add(sub *subscriber) {
	h.mu.Lock()
	set, ok := h.subs[sub.launchID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[sub.launchID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()
	observability.AddStreamSubscribers(1)
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	set := h.subs[sub.launchID]
	_, ok := set[sub]
	if ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.launchID)
		}
	}
	h.mu.Unlock()

	if ok {
		sub.close()
		observability.AddStreamSubscribers(-1)
	}
}

// readPump discards client messages and detects disconnects.
func (h *Hub) readPump(sub *subscriber) {
	defer func() {
		h.remove(sub)
		sub.conn.Close()
	}()

	sub.conn.SetReadLimit(maxMessageSize)
	_ = sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("stream closed", zap.String("launch_id", sub.launchID), zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
