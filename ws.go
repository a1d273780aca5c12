package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// event is one entry on the operator event feed: a change the engine
// committed, an archival, or a dispatched notification.
type event struct {
	Event   string `json:"event"`
	Content string `json:"content"`
	Time    string `json:"time"`
}

func (e *event) Bytes() []byte {
	b, _ := json.Marshal(e)
	return b
}

// eventHub maintains the set of connected operator clients and broadcasts
// engine events to all of them.
type eventHub struct {
	clients    map[*eventClient]bool
	broadcast  chan event
	register   chan *eventClient
	unregister chan *eventClient
}

func newEventHub() *eventHub {
	return &eventHub{
		broadcast:  make(chan event, 64),
		register:   make(chan *eventClient),
		unregister: make(chan *eventClient),
		clients:    make(map[*eventClient]bool),
	}
}

func (h *eventHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case ev := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- ev.Bytes():
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// eventClient is a middleman between one websocket connection and the hub.
type eventClient struct {
	hub  *eventHub
	conn *websocket.Conn
	send chan []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (a *App) initWebSocket() {
	hub := newEventHub()
	a.ws = hub.broadcast
	go hub.run()

	a.router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error(err)
			return
		}

		client := &eventClient{hub: hub, conn: conn, send: make(chan []byte, 256)}
		client.hub.register <- client

		go client.writePump()
		go client.readPump()
	})
}

// broadcast publishes an engine event to all connected operator clients.
// Drops the event if the hub's buffer is full; the feed is advisory.
func (a *App) broadcast(eventName, content string) {
	if a.ws == nil {
		return
	}
	select {
	case a.ws <- event{Event: eventName, Content: content, Time: time.Now().UTC().Format(time.RFC3339)}:
	default:
	}
}

// readPump discards client messages and detects disconnects. The feed is
// one-way; there is at most one reader per connection.
func (c *eventClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump pumps events from the hub to the websocket connection. There is
// at most one writer per connection.
func (c *eventClient) writePump() {
	ticker := time.NewTicker(50 * time.Second) // must be more frequent than read deadline
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
