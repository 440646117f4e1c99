package hub

import (
	"context"
	"encoding/json"
	"sync"

	"relay/pkg/models"

	"github.com/fasthttp/websocket"
)

// WatchClient connects to a relay as a viewer and decodes pushed frames.
type WatchClient struct {
	url       string
	mu        sync.Mutex
	conn      *websocket.Conn
	onMessage func(models.Notification)
	onInvalid func(raw []byte, err error)
}

// NewWatchClient creates a client for a relay socket URL, ex: "ws://localhost:3000/ws".
func NewWatchClient(url string) *WatchClient {
	return &WatchClient{url: url}
}

// OnMessage registers the callback for every pushed notification.
func (c *WatchClient) OnMessage(fn func(models.Notification)) {
	c.onMessage = fn
}

// OnInvalid registers the callback for frames that are not notifications.
func (c *WatchClient) OnInvalid(fn func(raw []byte, err error)) {
	c.onInvalid = fn
}

// Run dials the relay and reads until the connection ends or ctx is done.
func (c *WatchClient) Run(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	stop := context.AfterFunc(ctx, c.Close)
	defer stop()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var n models.Notification
		if err := json.Unmarshal(raw, &n); err != nil {
			if c.onInvalid != nil {
				c.onInvalid(raw, err)
			}
			continue
		}
		if c.onMessage != nil {
			c.onMessage(n)
		}
	}
}

func (c *WatchClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
	}
}
