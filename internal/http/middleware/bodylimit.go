// Request-body capping. Multipart uploads are already size-checked by the
// upload handler, but that check runs after the form is parsed; this cap
// bounds what the server will even read, keeping memory and disk safe from
// oversized or hostile payloads.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodyLimit caps the readable request body at maxBytes. Reads past the cap
// fail inside the handler (multipart parsing or JSON binding returns an
// error), which handlers surface as 413. A maxBytes <= 0 disables the cap.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
