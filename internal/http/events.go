package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// eventsHeartbeat is how often an idle event stream sends a keep-alive.
const eventsHeartbeat = 15 * time.Second

// streamStates writes every state received from states as a server-sent
// "state" event until the client goes away or the channel is closed. A closed
// channel means the session ended and is reported as a final "closed" event.
func streamStates[S any](c *gin.Context, states <-chan S, unsubscribe func()) {
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	heartbeat := time.NewTicker(eventsHeartbeat)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case state, ok := <-states:
			if !ok {
				c.SSEvent("closed", gin.H{})
				c.Writer.Flush()
				return
			}
			c.SSEvent("state", state)
			c.Writer.Flush()
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"time": time.Now().Format(time.RFC3339)})
			c.Writer.Flush()
		case <-ctx.Done():
			return
		}
	}
}
