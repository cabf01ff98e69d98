package control

import (
	"encoding/json"
	"sync"
	"time"

	"streamwall/internal/core/domain"

	"github.com/gorilla/websocket"
)

// client is one attached control connection. Writes are serialized through
// writeMu since gorilla connections allow only a single concurrent writer.
type client struct {
	id       string
	identity domain.Identity
	conn     *websocket.Conn

	// lastState is the normalized projection this client most recently
	// received; every delta is computed against it. Guarded by the server
	// mutex, not writeMu.
	lastState interface{}

	writeMu      sync.Mutex
	writeTimeout time.Duration
}

func (c *client) sendJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.send(websocket.TextMessage, data)
}

func (c *client) send(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteMessage(messageType, data)
}

func (c *client) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}
