package ws

import (
	"net/http"
	"time"

	"pingup/backend/pkg/errors"
	"pingup/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:      func(r *http.Request) bool { return true },
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
}

// Handler upgrades GET /api/ws?token=... to a websocket bound to the
// token's subject. A bearer header is accepted as well.
func Handler(hub *Hub, verifier middleware.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = middleware.BearerToken(c.GetHeader("Authorization"))
		}
		if token == "" {
			c.Error(errors.Unauthorized())
			c.Abort()
			return
		}
		claims, err := verifier.ValidateToken(token)
		if err != nil {
			c.Error(errors.Unauthorized().WithCause(err))
			c.Abort()
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Warn("Websocket upgrade failed", "error", err.Error())
			return
		}

		client := &Client{
			userID: claims.Subject,
			conn:   conn,
			send:   make(chan []byte, 64),
			hub:    hub,
		}
		if !hub.join(client) {
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}
