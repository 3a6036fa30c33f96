package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/fitmacro/internal/server/realtime"
)

const pingInterval = 25 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamTotals streams the user's recomputed DailyTotal after every diary write.
func (s *HTTPServer) streamTotals(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn(c.Request.Context(), "websocket upgrade failed", "error", err)
		return
	}

	cl := realtime.NewClient(currentUser(c), conn)
	s.hub.Register(cl)

	done := make(chan struct{})
	defer close(done)

	go func() {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := cl.Ping(); err != nil {
					s.hub.Unregister(cl)
					return
				}
			}
		}
	}()

	// the read loop ends when the client goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.hub.Unregister(cl)
			return
		}
	}
}
