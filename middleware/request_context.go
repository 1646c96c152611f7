// middleware/request_context.go
package middleware

import (
	"log"
	"net"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	HeaderRequestID      = "X-Request-ID"
	HeaderCFConnectingIP = "CF-Connecting-IP"
	RequestIDLocalsKey   = "request_id"
	ClientIPLocalsKey    = "client_ip"
)

// RequestContextMiddleware tags each request with an id and the caller's IP.
// An inbound X-Request-ID is kept only if it parses as a uuid.
// Behind Cloudflare the real client address arrives in CF-Connecting-IP.
func RequestContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		rid := uuid.NewString()
		if inbound, err := uuid.Parse(strings.TrimSpace(c.Get(HeaderRequestID))); err == nil {
			rid = inbound.String()
		}
		c.Set(HeaderRequestID, rid)

		ip := c.IP()
		if cf := net.ParseIP(strings.TrimSpace(c.Get(HeaderCFConnectingIP))); cf != nil {
			ip = cf.String()
		}

		c.Locals(RequestIDLocalsKey, rid)
		c.Locals(ClientIPLocalsKey, ip)

		err := c.Next()

		log.Printf("[REQ] %s %s %s ip=%s status=%d dur=%s",
			rid, c.Method(), c.Path(), ip, c.Response().StatusCode(), time.Since(start).Round(time.Microsecond))
		return err
	}
}
