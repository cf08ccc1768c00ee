// Idempotency support for the intake endpoint. Duplicate form submissions are
// a real failure mode here: flaky campus networks make users resubmit, and
// every resubmission sends two emails. Clients send an Idempotency-Key header;
// the middleware validates it, stashes it in the request context, and asks a
// pluggable lookup whether the key was already used. On a hit it flags the
// request as a replay so the handler can re-serve the recorded submission id
// and the rate limiter lets the retry through.
//
// The middleware never serves the cached payload itself; persistence stays
// behind the lookup function and handlers stay in control of the response.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header clients use to deduplicate
// retried submissions. The value must be stable across retries of the same
// logical operation.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys stashing idempotency state; read via the accessor helpers.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

// GetIdempotencyKey returns the validated key stashed by IdempotencyValidator.
// The second result reports presence.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the lookup found a completed prior request for
// this key. Handlers should then re-serve the recorded result instead of
// running the pipeline again.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// ClientID is the identity that scopes idempotency keys and rate buckets.
// The API is anonymous, so the client IP is the identity.
func ClientID(c *gin.Context) string {
	return c.ClientIP()
}

// IdempotencyOptions configures header validation. MaxLen caps key length
// (default 200); Pattern restricts characters (default RFC7230-ish token:
// ^[A-Za-z0-9._~\-:]+$).
type IdempotencyOptions struct {
	MaxLen  int
	Pattern *regexp.Regexp
}

// IdempotencyLookup answers whether a still-valid prior submission exists for
// (clientID, key) at the given time. Lookup failures must not block normal
// processing; return an error only for diagnostics.
type IdempotencyLookup func(ctx context.Context, clientID, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present,
// stashes it, and consults lookup for replays. A malformed key is rejected
// with 400; an absent header makes the middleware a no-op. On a replay both
// the replay flag and the rate-limit bypass flag are set.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}

		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "invalid_idempotency_key",
				"message":    "Idempotency-Key header is malformed",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			exists, err := lookup(c.Request.Context(), ClientID(c), key, time.Now().UTC())
			if err == nil && exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}
