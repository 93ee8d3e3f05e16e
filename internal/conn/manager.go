// Package conn owns the single push connection per authenticated session: a
// websocket client wrapped in an explicit reconnect state machine with capped
// exponential backoff. Validated notification frames go to the store; the raw
// validated events fan out to subscribers so a display collaborator can react
// without re-parsing.
package conn

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"eduboard/internal/domain"
	"eduboard/internal/pkg/jwt"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	maxFrameSize = 512 * 1024 // 512 KB
)

// Sink is where validated push records land. *store.Store satisfies it.
type Sink interface {
	Upsert(rec domain.Notification) error
}

type Options struct {
	// WSBase is the websocket root, e.g. wss://portal.example.com/ws.
	WSBase string
	// Token is the session bearer credential, presented as a query parameter
	// because the handshake carries no headers.
	Token string

	BaseDelay        time.Duration // first reconnect delay (default 1s)
	MaxDelay         time.Duration // backoff cap (default 32s)
	MaxAttempts      int           // retry budget before degrading (default 5)
	HandshakeTimeout time.Duration // default 10s
}

func (o *Options) applyDefaults() {
	if o.BaseDelay <= 0 {
		o.BaseDelay = time.Second
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 32 * time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = 10 * time.Second
	}
}

// Manager drives one logical push connection through its lifecycle.
type Manager struct {
	opts   Options
	sink   Sink
	dialer *websocket.Dialer

	mu       sync.Mutex
	state    State
	attempt  int
	epoch    int // bumped on Connect/Disconnect so stale goroutines detect themselves
	timer    *time.Timer
	conn     *websocket.Conn
	degraded bool
	nextSub  int
	subs     map[int]chan domain.Notification
}

func New(opts Options, sink Sink) *Manager {
	opts.applyDefaults()
	return &Manager{
		opts: opts,
		sink: sink,
		dialer: &websocket.Dialer{
			HandshakeTimeout: opts.HandshakeTimeout,
		},
		state: StateIdle,
		subs:  make(map[int]chan domain.Notification),
	}
}

// State returns the current lifecycle phase.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Degraded reports whether the retry budget has been exhausted and the
// system is running REST-only.
func (m *Manager) Degraded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.degraded
}

// Subscribe returns a channel of validated push records and its unsubscribe
// func. Slow subscribers are skipped, never blocked on.
func (m *Manager) Subscribe() (<-chan domain.Notification, func()) {
	ch := make(chan domain.Notification, 16)
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.mu.Unlock()
	return ch, func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Connect starts the connection. Without a live credential it stays idle;
// that is a no-op, not an error. Calling Connect after the retry budget was
// exhausted resets the counter and tries again.
func (m *Manager) Connect() {
	ident, err := jwt.Inspect(m.opts.Token)
	if err != nil || !ident.Live(time.Now()) {
		log.Printf("push: no live credential, staying idle")
		return
	}

	m.mu.Lock()
	if m.state != StateIdle && m.state != StateClosed {
		m.mu.Unlock()
		return
	}
	m.attempt = 0
	m.degraded = false
	m.epoch++
	epoch := m.epoch
	m.state = StateConnecting
	m.mu.Unlock()

	go m.dial(epoch, ident.UserID)
}

// Disconnect closes the connection by caller intent: any pending reconnect
// timer is cancelled and no new attempt is scheduled.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.epoch++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	c := m.conn
	m.conn = nil
	m.state = StateClosing
	m.mu.Unlock()

	if c != nil {
		deadline := time.Now().Add(writeWait)
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.Close()
	}

	m.mu.Lock()
	m.state = StateClosed
	m.mu.Unlock()
}

// channelURL builds {wsBase}/notifications/{userID}/?token={bearer}.
func (m *Manager) channelURL(userID string) string {
	return fmt.Sprintf("%s/notifications/%s/?token=%s",
		strings.TrimRight(m.opts.WSBase, "/"),
		url.PathEscape(userID),
		url.QueryEscape(m.opts.Token))
}

func (m *Manager) dial(epoch int, userID string) {
	c, _, err := m.dialer.Dial(m.channelURL(userID), nil)
	if err != nil {
		log.Printf("push: handshake failed: %v", err)
		m.scheduleReconnect(epoch, userID)
		return
	}

	m.mu.Lock()
	if epoch != m.epoch || m.state != StateConnecting {
		m.mu.Unlock()
		c.Close()
		return
	}
	m.state = StateOpen
	m.attempt = 0
	m.conn = c
	m.mu.Unlock()

	log.Printf("push: connected for user %s", userID)
	go m.pingLoop(c)
	m.readLoop(c, epoch, userID)
}

func (m *Manager) readLoop(c *websocket.Conn, epoch int, userID string) {
	defer c.Close()

	c.SetReadLimit(maxFrameSize)
	c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				log.Printf("push: connection lost: %v", err)
			}
			break
		}
		m.handleFrame(msg)
	}

	m.scheduleReconnect(epoch, userID)
}

// pingLoop keeps the connection alive; it exits once writes start failing,
// which happens as soon as readLoop (or Disconnect) closes the socket.
func (m *Manager) pingLoop(c *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}

// handleFrame decodes one inbound frame. Malformed frames are dropped and
// logged; one bad frame must never take the connection down. Unrecognized
// frame kinds are ignored for forward compatibility.
func (m *Manager) handleFrame(data []byte) {
	var frame domain.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Printf("push: dropping malformed frame: %v", err)
		return
	}

	switch frame.Type {
	case domain.FrameNotification:
		if frame.Notification == nil || !frame.Notification.Valid() {
			log.Printf("push: dropping notification frame with bad shape")
			return
		}
		rec := *frame.Notification
		if err := m.sink.Upsert(rec); err != nil {
			log.Printf("push: store rejected record %s: %v", rec.ID, err)
			return
		}
		m.broadcast(rec)
	case "":
		log.Printf("push: dropping frame without a type discriminator")
	default:
		// Reserved frame kinds; ignore.
	}
}

func (m *Manager) broadcast(rec domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- rec:
		default:
			// Subscriber too slow — skip
		}
	}
}

func (m *Manager) scheduleReconnect(epoch int, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch || m.state == StateClosing || m.state == StateClosed {
		return
	}
	m.conn = nil

	if m.attempt >= m.opts.MaxAttempts {
		m.state = StateClosed
		m.degraded = true
		log.Printf("push: retry budget exhausted after %d attempts, REST-only from here", m.attempt)
		return
	}

	delay := Delay(m.attempt, m.opts.BaseDelay, m.opts.MaxDelay)
	m.attempt++
	m.state = StateReconnectScheduled
	log.Printf("push: reconnect %d in %s", m.attempt, delay)

	m.timer = time.AfterFunc(delay, func() {
		m.mu.Lock()
		if epoch != m.epoch || m.state != StateReconnectScheduled {
			m.mu.Unlock()
			return
		}
		m.state = StateConnecting
		m.mu.Unlock()
		m.dial(epoch, userID)
	})
}
