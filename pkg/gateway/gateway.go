// Package gateway accepts phone connections over WebSocket. The phone
// streams position samples and camera frames in, and receives speak and
// interrupt commands for its on-device text-to-speech.
package gateway

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/benz16107/BlindSpot/internal/log"
	"github.com/benz16107/BlindSpot/pkg/protocol"
)

// PhoneConnection represents one connected phone.
type PhoneConnection struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time
	LastSeen  time.Time

	mu sync.Mutex
}

// Send sends a message to the phone. Writes are serialized per
// connection.
func (p *PhoneConnection) Send(msg *protocol.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	return p.Conn.WriteMessage(websocket.TextMessage, data)
}

// Gateway manages phone WebSocket connections and dispatches their
// messages to the navigation and hazard subsystems.
type Gateway struct {
	mu     sync.RWMutex
	phones map[string]*PhoneConnection

	// Callbacks
	onPosition func(phoneID string, pos *protocol.PositionData)
	onFrame    func(phoneID string, frame *protocol.FrameData)
	onMode     func(phoneID string, mode *protocol.ModeData)
	onRoute    func(phoneID string, route *protocol.RouteData)

	// Stats
	messagesReceived atomic.Uint64
	framesReceived   atomic.Uint64
}

// New creates a gateway.
func New() *Gateway {
	return &Gateway{
		phones: make(map[string]*PhoneConnection),
	}
}

// OnPosition sets the callback for incoming position samples.
func (g *Gateway) OnPosition(callback func(phoneID string, pos *protocol.PositionData)) {
	g.mu.Lock()
	g.onPosition = callback
	g.mu.Unlock()
}

// OnFrame sets the callback for incoming camera frames.
func (g *Gateway) OnFrame(callback func(phoneID string, frame *protocol.FrameData)) {
	g.mu.Lock()
	g.onFrame = callback
	g.mu.Unlock()
}

// OnMode sets the callback for mode toggles.
func (g *Gateway) OnMode(callback func(phoneID string, mode *protocol.ModeData)) {
	g.mu.Lock()
	g.onMode = callback
	g.mu.Unlock()
}

// OnRoute sets the callback for externally supplied routes.
func (g *Gateway) OnRoute(callback func(phoneID string, route *protocol.RouteData)) {
	g.mu.Lock()
	g.onRoute = callback
	g.mu.Unlock()
}

// RegisterRoutes registers the phone WebSocket endpoint on a Fiber app.
func (g *Gateway) RegisterRoutes(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/phone", websocket.New(g.handlePhone))
	app.Get("/ws/phone/:id", websocket.New(g.handlePhone))
}

// handlePhone handles one phone WebSocket connection.
func (g *Gateway) handlePhone(c *websocket.Conn) {
	phoneID := c.Params("id")
	if phoneID == "" {
		phoneID = uuid.NewString()[:8]
	}

	phone := &PhoneConnection{
		ID:        phoneID,
		Conn:      c,
		Connected: time.Now(),
		LastSeen:  time.Now(),
	}

	g.mu.Lock()
	g.phones[phoneID] = phone
	count := len(g.phones)
	g.mu.Unlock()
	log.Info("phone connected", "phone", phoneID, "total", count)

	defer func() {
		g.mu.Lock()
		delete(g.phones, phoneID)
		count := len(g.phones)
		g.mu.Unlock()
		log.Info("phone disconnected", "phone", phoneID, "total", count)
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			log.Debug("phone read error", "phone", phoneID, "error", err)
			return
		}

		phone.mu.Lock()
		phone.LastSeen = time.Now()
		phone.mu.Unlock()

		g.messagesReceived.Add(1)
		g.handleMessage(phoneID, data)
	}
}

// handleMessage processes an incoming message from a phone. Malformed
// messages are logged and dropped, never fatal.
func (g *Gateway) handleMessage(phoneID string, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		log.Debug("parse error", "phone", phoneID, "error", err)
		return
	}

	g.mu.RLock()
	positionCb := g.onPosition
	frameCb := g.onFrame
	modeCb := g.onMode
	routeCb := g.onRoute
	g.mu.RUnlock()

	switch msg.Type {
	case protocol.TypePosition:
		if positionCb != nil {
			if pos, err := msg.GetPositionData(); err == nil {
				positionCb(phoneID, pos)
			}
		}

	case protocol.TypeFrame:
		g.framesReceived.Add(1)
		if frameCb != nil {
			if frame, err := msg.GetFrameData(); err == nil {
				frameCb(phoneID, frame)
			}
		}

	case protocol.TypeMode:
		if modeCb != nil {
			if mode, err := msg.GetModeData(); err == nil {
				modeCb(phoneID, mode)
			}
		}

	case protocol.TypeRoute:
		if routeCb != nil {
			if rd, err := msg.GetRouteData(); err == nil {
				routeCb(phoneID, rd)
			}
		}

	case protocol.TypePing:
		var ping protocol.PingData
		if err := msg.ParseData(&ping); err == nil {
			g.sendPong(phoneID, ping.ID, ping.Timestamp)
		}
	}
}

// SendSpeak sends text to every connected phone's TTS.
func (g *Gateway) SendSpeak(text string) error {
	msg, err := protocol.NewSpeakMessage(text)
	if err != nil {
		return err
	}
	return g.broadcast(msg)
}

// SendInterrupt cancels speech in progress on every connected phone.
func (g *Gateway) SendInterrupt() error {
	msg, err := protocol.NewInterruptMessage()
	if err != nil {
		return err
	}
	return g.broadcast(msg)
}

// SendHazard pushes a hazard state change to connected phones so the
// app can show a visual alert alongside the spoken one.
func (g *Gateway) SendHazard(detected bool, description string) error {
	msg, err := protocol.NewHazardMessage(detected, description)
	if err != nil {
		return err
	}
	return g.broadcast(msg)
}

func (g *Gateway) sendPong(phoneID, pingID string, pingTS int64) {
	msg, err := protocol.NewPongMessage(pingID, pingTS, time.Now().UnixMilli())
	if err != nil {
		return
	}

	g.mu.RLock()
	phone := g.phones[phoneID]
	g.mu.RUnlock()
	if phone != nil {
		if err := phone.Send(msg); err != nil {
			log.Debug("pong failed", "phone", phoneID, "error", err)
		}
	}
}

// broadcast sends a message to all connected phones. A failed send is
// logged; the connection's own read loop handles teardown.
func (g *Gateway) broadcast(msg *protocol.Message) error {
	g.mu.RLock()
	phones := make([]*PhoneConnection, 0, len(g.phones))
	for _, p := range g.phones {
		phones = append(phones, p)
	}
	g.mu.RUnlock()

	var lastErr error
	for _, p := range phones {
		if err := p.Send(msg); err != nil {
			log.Warn("send failed", "phone", p.ID, "error", err)
			lastErr = err
		}
	}
	return lastErr
}

// PhoneCount returns the number of connected phones.
func (g *Gateway) PhoneCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.phones)
}

// Stats returns message and frame counters.
func (g *Gateway) Stats() (messages, frames uint64) {
	return g.messagesReceived.Load(), g.framesReceived.Load()
}
