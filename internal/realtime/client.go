package realtime

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // overlays are served cross-origin from the stream tooling
	},
}

// SnapshotFunc produces the initial_data payload for an auction, or an
// error when the auction does not exist.
type SnapshotFunc func(auctionID string) (any, error)

// client ties one websocket connection to a hub subscription.
type client struct {
	sub    *Subscriber
	hub    *Hub
	conn   *websocket.Conn
	logger *zap.Logger
}

// ServeWs upgrades the connection, registers a subscriber for the auction
// and streams its events. The subscriber receives a synthesized
// initial_data event before any broadcast.
func ServeWs(hub *Hub, snapshot SnapshotFunc, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		auctionID := c.Param("id")
		initial, err := snapshot(auctionID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "auction not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		sub := hub.Subscribe(auctionID)
		hub.Send(sub, "initial_data", initial)

		cl := &client{sub: sub, hub: hub, conn: conn, logger: logger}
		go cl.writePump()
		cl.readPump()
	}
}

// readPump drains inbound frames. Subscribers are read-only consumers; the
// loop exists to detect disconnects and answer pings.
func (c *client) readPump() {
	defer func() {
		c.hub.Unsubscribe(c.sub)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// writePump forwards hub events to the socket and keeps the heartbeat.
// A closed event channel (unsubscribe or eviction) ends the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.sub.Events():
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
