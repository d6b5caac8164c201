package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/m1z23r/drift/pkg/drift"
)

// APIKeyAuth creates middleware that gates requests behind a static
// bearer key. An empty configured key disables the check, which is the
// default for a tracker running on localhost.
func APIKeyAuth(key string) drift.HandlerFunc {
	return func(c *drift.Context) {
		if key == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Unauthorized("missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.Unauthorized("invalid authorization header format")
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(key)) != 1 {
			c.Unauthorized("invalid api key")
			return
		}

		c.Next()
	}
}
