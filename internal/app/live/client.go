package live

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"kinbrio/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed between Pong messages from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// clients only send control frames.
	maxMessageSize = 512

	sendBuffer = 64

	// CloseSessionExpired is the close code sent when the session behind a stream ends.
	CloseSessionExpired = 4001
)

// Client is one browser connection subscribed to an organization's feed.
type Client struct {
	// feed is set by Hub.Attach.
	feed            *Feed
	conn            *websocket.Conn
	organizationKey uuid.UUID
	userKey         uuid.UUID

	// expiresAt is the end of the session the connection was opened with.
	expiresAt time.Time

	send chan []byte

	logger zerolog.Logger
}

func NewClient(conn *websocket.Conn, organizationKey, userKey uuid.UUID, expiresAt time.Time) *Client {
	return &Client{
		conn:            conn,
		organizationKey: organizationKey,
		userKey:         userKey,
		expiresAt:       expiresAt,
		send:            make(chan []byte, sendBuffer),
		logger: logx.Logger().With().
			Str("organization_key", organizationKey.String()).
			Str("user_key", userKey.String()).
			Logger(),
	}
}

// ReadPump keeps the read deadline fresh and discards anything the browser sends. On exit
// it leaves the feed and closes the connection.
func (c *Client) ReadPump() {
	defer func() {
		if c.feed != nil {
			c.feed.remove(c)
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Feed connection closed unexpectedly")
			}
			return
		}
	}
}

// WritePump writes queued frames and pings until the feed closes the send channel, a write
// fails or the session expires.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	expired := time.NewTimer(time.Until(c.expiresAt))

	defer func() {
		ticker.Stop()
		expired.Stop()
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Feed connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueued(frame, ok) {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing ping")
				return
			}

		case <-expired.C:
			c.logger.Info().Msg("Session expired. Closing feed connection.")
			msg := websocket.FormatCloseMessage(CloseSessionExpired, "session expired")
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		}
	}
}

func (c *Client) writeQueued(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return false
	}
	if !ok {
		_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
		return false
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Debug().Err(err).Msg("Error writing frame")
		return false
	}
	return true
}
