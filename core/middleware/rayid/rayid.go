package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// Header is the request and response header carrying the RayID.
	Header = "X-Ray-ID"
	// LocalsKey is the fiber locals key the RayID is stored under.
	LocalsKey = "ray_id"
)

// New creates the RayID middleware. An incoming RayID header is kept,
// otherwise a new uuid is generated.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(Header)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(LocalsKey, rid)
		c.Set(Header, rid)
		return c.Next()
	}
}

// Get returns the RayID of the request, or an empty string.
func Get(c *fiber.Ctx) string {
	rid, _ := c.Locals(LocalsKey).(string)
	return rid
}
