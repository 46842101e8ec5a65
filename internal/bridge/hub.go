package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var ErrSessionNotFound = errors.New("bridge session not found")

// conn wraps a websocket connection with a write lock, since gorilla
// connections allow only one concurrent writer.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(env *Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// session joins one embedded page instance with the admin connections
// inspecting it.
type session struct {
	id          string
	page        *Page
	pageConn    *conn
	admins      map[*conn]struct{}
	watchCancel context.CancelFunc
}

// Hub relays override traffic between admin UIs and embedded page
// sessions. Messages are handled synchronously per connection in
// arrival order; the last applied override wins.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*session),
	}
}

// JoinPage registers the embedded page of a session. The rendered HTML
// seeds the session document, a snapshot is broadcast to any admins
// already attached, and a route watcher re-broadcasts on navigation.
// Blocks until the connection closes.
func (h *Hub) JoinPage(sessionID string, ws *websocket.Conn, rendered, location string) {
	page := NewPage(rendered, location)
	c := &conn{ws: ws}

	ctx, cancel := context.WithCancel(context.Background())

	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	if !ok {
		s = &session{id: sessionID, admins: make(map[*conn]struct{})}
		h.sessions[sessionID] = s
	}
	if s.watchCancel != nil {
		s.watchCancel()
	}
	s.page = page
	s.pageConn = c
	s.watchCancel = cancel
	h.mu.Unlock()

	watcher := NewRouteWatcher(page, func(snapshot Overrides) {
		h.broadcastSnapshot(sessionID, snapshot)
	})
	go watcher.Run(ctx)

	h.broadcastSnapshot(sessionID, page.Scan())

	h.readLoop(sessionID, c)

	cancel()
	h.detachPage(sessionID, c)
}

// JoinAdmin registers an admin connection for a session, sends it the
// current snapshot, and relays its override messages. Blocks until the
// connection closes.
func (h *Hub) JoinAdmin(sessionID string, ws *websocket.Conn) {
	c := &conn{ws: ws}

	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	if !ok {
		s = &session{id: sessionID, admins: make(map[*conn]struct{})}
		h.sessions[sessionID] = s
	}
	s.admins[c] = struct{}{}
	page := s.page
	h.mu.Unlock()

	if page != nil {
		if env, err := NewOriginalContent(page.Scan()); err == nil {
			if err := c.send(env); err != nil {
				logrus.Errorf("bridge admin send failed: %v", err)
			}
		}
	}

	h.readLoop(sessionID, c)

	h.mu.Lock()
	delete(s.admins, c)
	if len(s.admins) == 0 && s.pageConn == nil {
		delete(h.sessions, sessionID)
	}
	h.mu.Unlock()
}

// Navigate records a client-side route change for a session's page.
// The route watcher picks up the change and re-broadcasts a snapshot.
func (h *Hub) Navigate(sessionID, location, rendered string) error {
	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	h.mu.Unlock()

	if !ok || s.page == nil {
		return ErrSessionNotFound
	}

	s.page.Navigate(location, rendered)
	return nil
}

// Snapshot scans the session's page document.
func (h *Hub) Snapshot(sessionID string) (Overrides, error) {
	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	h.mu.Unlock()

	if !ok || s.page == nil {
		var empty Overrides
		empty.Normalize()
		return empty, ErrSessionNotFound
	}

	return s.page.Scan(), nil
}

// Apply applies overrides to the session's page document and forwards
// them to the page connection. Overrides are accepted from any sender.
func (h *Hub) Apply(sessionID string, overrides Overrides) error {
	overrides.Normalize()

	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	var pageConn *conn
	var page *Page
	if ok {
		pageConn = s.pageConn
		page = s.page
	}
	h.mu.Unlock()

	if !ok || page == nil {
		return ErrSessionNotFound
	}

	page.Apply(overrides)

	if pageConn != nil {
		env, err := NewApplyOverrides(overrides)
		if err != nil {
			return err
		}
		if err := pageConn.send(env); err != nil {
			logrus.Errorf("bridge page send failed: %v", err)
		}
	}

	return nil
}

func (h *Hub) readLoop(sessionID string, c *conn) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			// malformed frames are dropped, never fatal
			continue
		}

		switch env.Type {
		case KindApplyOverrides:
			if err := h.Apply(sessionID, DecodeOverrides(env.Payload)); err != nil {
				logrus.Warnf("bridge apply on session %s: %v", sessionID, err)
			}
		case KindOriginalContent:
			// a page pushing its own snapshot; relay to admins as-is
			h.broadcastSnapshot(sessionID, DecodeOverrides(env.Payload))
		default:
			// unknown kinds are outside the closed set, ignore
		}
	}
}

func (h *Hub) broadcastSnapshot(sessionID string, snapshot Overrides) {
	env, err := NewOriginalContent(snapshot)
	if err != nil {
		return
	}

	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	var admins []*conn
	if ok {
		for admin := range s.admins {
			admins = append(admins, admin)
		}
	}
	h.mu.Unlock()

	for _, admin := range admins {
		if err := admin.send(env); err != nil {
			logrus.Errorf("bridge snapshot send failed: %v", err)
		}
	}
}

func (h *Hub) detachPage(sessionID string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok || s.pageConn != c {
		return
	}

	s.pageConn = nil
	if len(s.admins) == 0 {
		delete(h.sessions, sessionID)
	}
}
