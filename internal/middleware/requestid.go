package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"
)

// maxInboundRequestIDLen caps caller-supplied ids so a hostile header cannot
// bloat every log line for the request.
const maxInboundRequestIDLen = 64

// RequestID tags each request with an id used to correlate logs and error
// responses. A caller-supplied X-Request-ID is kept when it is reasonably
// sized; anything else gets a fresh UUID. The id is echoed back on the
// response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" || len(rid) > maxInboundRequestIDLen {
			rid = uuid.New().String()
		}

		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)
		c.Next()
	}
}
