package guard

import (
	"github.com/MrEthical07/techhatch/session"
	"github.com/gofiber/fiber/v2"
)

// LocalsSessionKey is the fiber Locals key holding the guarded request's session.
const LocalsSessionKey = "techhatch.session"

// Fiber guards page routes served by a fiber app.
func Fiber(opts Options) fiber.Handler {
	opts = opts.normalize()
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			token = c.Cookies(opts.CookieName)
		}
		sess := SessionFromToken(token, opts.Now())

		d := opts.Table.Resolve(c.Path(), sess, false)
		switch d.Outcome {
		case Redirect:
			return c.Redirect(d.Location, fiber.StatusFound)
		case NotFound:
			if !opts.PassUnknown {
				return c.SendStatus(fiber.StatusNotFound)
			}
		}

		if sess != nil {
			c.Locals(LocalsSessionKey, sess)
		}
		return c.Next()
	}
}

// FiberSession returns the session attached by Fiber.
func FiberSession(c *fiber.Ctx) (*session.Session, bool) {
	s, ok := c.Locals(LocalsSessionKey).(*session.Session)
	return s, ok && s != nil
}
