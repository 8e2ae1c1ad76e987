// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_presenter

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rapidaai/linguastream/pkg/commons"
)

const (
	clientBuffer = 64
	writeTimeout = 5 * time.Second
)

var hubUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is the JSON message sent to connected UIs.
type Event struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Property string `json:"property,omitempty"`
	Value    string `json:"value"`
}

// Hub forwards element writes to websocket clients. A client that connects
// late first receives the current value of every element.
type Hub struct {
	logger commons.Logger

	mu      sync.Mutex
	clients map[*hubClient]struct{}
	state   map[string]Event
	order   []string
	closed  bool
}

type hubClient struct {
	conn *websocket.Conn
	send chan Event
}

func NewHub(logger commons.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: map[*hubClient]struct{}{},
		state:   map[string]Event{},
	}
}

func (h *Hub) SetText(id, text string) {
	h.publish(Event{Type: "text", ID: id, Value: text})
}

func (h *Hub) SetStyle(id, property, value string) {
	h.publish(Event{Type: "style", ID: id, Property: property, Value: value})
}

func (h *Hub) Alert(message string) {
	h.publish(Event{Type: "alert", Value: message})
}

func (h *Hub) publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if e.Type != "alert" {
		key := e.Type + "|" + e.ID + "|" + e.Property
		if _, ok := h.state[key]; !ok {
			h.order = append(h.order, key)
		}
		h.state[key] = e
	}
	for c := range h.clients {
		select {
		case c.send <- e:
		default:
			h.logger.Warnf("presenter hub: dropping slow client %s", c.conn.RemoteAddr())
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Clients is the number of connected UIs.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Routes(engine *gin.Engine) {
	h.logger.Info("presenter hub routes added to engine.")
	group := engine.Group("")
	{
		group.GET("/ws", h.Connect)
		group.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": h.Clients()})
		})
	}
}

// Connect upgrades the request and streams events until either side closes.
func (h *Hub) Connect(c *gin.Context) {
	conn, err := hubUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("presenter hub: upgrade failed: %v", err)
		return
	}
	client := h.register(conn)
	if client == nil {
		conn.Close()
		return
	}
	go h.write(client)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister(client)
}

func (h *Hub) register(conn *websocket.Conn) *hubClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	client := &hubClient{conn: conn, send: make(chan Event, clientBuffer+len(h.order))}
	for _, key := range h.order {
		client.send <- h.state[key]
	}
	h.clients[client] = struct{}{}
	h.logger.Debugf("presenter hub: client %s connected", conn.RemoteAddr())
	return client
}

func (h *Hub) unregister(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) write(c *hubClient) {
	defer c.conn.Close()
	for e := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(e); err != nil {
			h.logger.Debugf("presenter hub: write to %s failed: %v", c.conn.RemoteAddr(), err)
			h.unregister(c)
			for range c.send {
			}
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}

// Close disconnects every client. Later writes are discarded.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// Handler is a standalone engine serving the hub routes.
func (h *Hub) Handler() http.Handler {
	engine := gin.New()
	// status pages are usually served from another origin
	engine.Use(gin.Recovery(), cors.Default())
	h.Routes(engine)
	return engine
}

// Serve runs the hub on addr until ctx is done.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler()}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	h.logger.Infof("presenter hub listening on %s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	h.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
