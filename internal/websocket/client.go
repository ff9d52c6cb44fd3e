package websocket

import (
	"encoding/json"
	"log"
	"time"

	"despacho-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/jmoiron/sqlx"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 2048
)

// Client represents a WebSocket client connection
type Client struct {
	UserID   string
	UserRole string // "driver" or "admin"
	conn     *websocket.Conn
	hub      *Hub
	send     chan []byte
	db       *sqlx.DB
}

// IncomingMessage represents a message from the client
type IncomingMessage struct {
	Type      string                 `json:"type"`
	Timestamp string                 `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// NewClient creates a new WebSocket client
func NewClient(userID, userRole string, conn *websocket.Conn, hub *Hub, db *sqlx.DB) *Client {
	return &Client{
		UserID:   userID,
		UserRole: userRole,
		conn:     conn,
		hub:      hub,
		send:     make(chan []byte, 256),
		db:       db,
	}
}

// ReadPump pumps messages from the WebSocket connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Invalid message format: %v", err)
			continue
		}

		switch msg.Type {
		case "ping":
			response := map[string]interface{}{
				"type":      "pong",
				"timestamp": time.Now().Format(time.RFC3339),
			}
			responseData, _ := json.Marshal(response)
			c.send <- responseData

		case "location_update":
			c.handleLocationUpdate(msg.Data)
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleLocationUpdate persists a driver location fix and forwards it to
// the admin dashboard. The feed is display-only: geofence gating always
// uses the position attached to the gated request itself.
func (c *Client) handleLocationUpdate(data map[string]interface{}) {
	if c.UserRole != models.RoleDriver {
		return
	}

	latitude, okLat := data["latitude"].(float64)
	longitude, okLng := data["longitude"].(float64)
	timestamp, okTS := data["timestamp"].(float64)
	if !okLat || !okLng || !okTS {
		log.Printf("❌ Invalid location update from driver %s", c.UserID)
		return
	}

	var heading, speed, accuracy *float64
	if h, ok := data["heading"].(float64); ok {
		heading = &h
	}
	if s, ok := data["speed"].(float64); ok {
		speed = &s
	}
	if a, ok := data["accuracy"].(float64); ok {
		accuracy = &a
	}

	var dispatchID *string
	if did, ok := data["dispatch_id"].(string); ok {
		dispatchID = &did
	}

	query := `
		INSERT INTO driver_locations (
			driver_id, latitude, longitude, heading, speed, accuracy, dispatch_id, timestamp, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, EXTRACT(EPOCH FROM NOW())::BIGINT)
	`

	if _, err := c.db.Exec(query, c.UserID, latitude, longitude, heading, speed, accuracy, dispatchID, int64(timestamp)); err != nil {
		log.Printf("❌ Error saving location for driver %s: %v", c.UserID, err)
		return
	}

	c.hub.BroadcastToRole(models.RoleAdmin, map[string]interface{}{
		"type": "driver_location_update",
		"data": map[string]interface{}{
			"driver_id":   c.UserID,
			"latitude":    latitude,
			"longitude":   longitude,
			"heading":     heading,
			"speed":       speed,
			"accuracy":    accuracy,
			"dispatch_id": dispatchID,
			"timestamp":   int64(timestamp),
		},
	})
}
