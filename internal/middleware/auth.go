package middleware

import (
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

// Actor is the authenticated session user as handlers consume it.
type Actor struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Gender      string
	UserType    string
}

// RequireAuth ensures a user is in the session. Returns 401 with the standard
// error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// RequireBusiness gates business-only routes (subscription purchase).
func RequireBusiness() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := GetActor(c)
		if actor == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if actor.UserType != "business" {
			return response.Error(c, "Subscriptions are for business accounts", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}

// GetUser returns the raw session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// GetActor parses the session user into an Actor, or nil.
func GetActor(c *fiber.Ctx) *Actor {
	u := GetUser(c)
	if u == nil {
		return nil
	}
	m, ok := u.(map[string]interface{})
	if !ok {
		return nil
	}
	idStr, _ := m["user_id"].(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil
	}
	actor := &Actor{UserID: id}
	actor.DisplayName, _ = m["display_name"].(string)
	actor.Email, _ = m["email"].(string)
	actor.Gender, _ = m["gender"].(string)
	actor.UserType, _ = m["user_type"].(string)
	return actor
}
