package server

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"github.com/zen-systems/acemock/pkg/assistant"
	"github.com/zen-systems/acemock/pkg/engine"
)

// chat answers a site chat message. A present but non-text message gets
// the rule responder's prompt for input.
func (s *Server) chat(c fiber.Ctx) error {
	f := decodeFields(s, c)
	if !f.truthy("message") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"reply": msgEmptyMessage})
	}
	if !f.isString("message") {
		return c.JSON(s.responder.Respond(""))
	}

	reply := s.engine.Chat(c.Context(), engine.ChatRequest{
		Message:    f.text("message"),
		CurrentURL: stringOrEmpty(f, "currentUrl"),
		Routes:     parseRoutes(c, f.raw("routes")),
	})
	return c.JSON(reply)
}

func stringOrEmpty(f fields, name string) string {
	if !f.isString(name) {
		return ""
	}
	return f.text(name)
}

// parseRoutes keeps the client's route list only when it is an array of
// route objects.
func parseRoutes(c fiber.Ctx, raw json.RawMessage) []assistant.Route {
	if len(raw) == 0 {
		return nil
	}
	var routes []assistant.Route
	if err := c.App().Config().JSONDecoder(raw, &routes); err != nil {
		return nil
	}
	return routes
}
