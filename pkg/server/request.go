package server

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// fields holds a request body split into its top-level members so each one
// is read on its own and a bad optional member never voids the rest.
type fields map[string]json.RawMessage

// decodeFields reads a JSON object body. Malformed or non-object bodies
// yield no fields, matching an empty object.
func decodeFields(s *Server, c fiber.Ctx) fields {
	body := c.Body()
	if len(body) == 0 {
		return fields{}
	}
	var f fields
	if err := c.App().Config().JSONDecoder(body, &f); err != nil || f == nil {
		if err != nil {
			s.requestLogger(c).Debug("malformed request body", zap.Error(err))
		}
		return fields{}
	}
	return f
}

// text returns a member as a string. Numbers and true are rendered as
// their literal text; null, false, objects and arrays read as empty.
func (f fields) text(name string) string {
	raw := bytes.TrimSpace(f[name])
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return ""
		}
		return v
	case 't':
		return "true"
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw)
	}
	return ""
}

// isString reports whether the member is present as a JSON string.
func (f fields) isString(name string) bool {
	raw := bytes.TrimSpace(f[name])
	return len(raw) > 0 && raw[0] == '"'
}

// truthy reports whether the member would pass a JavaScript truthiness check.
func (f fields) truthy(name string) bool {
	raw := bytes.TrimSpace(f[name])
	if len(raw) == 0 {
		return false
	}
	switch string(raw) {
	case "null", "false", `""`:
		return false
	}
	if n, err := strconv.ParseFloat(string(raw), 64); err == nil {
		return n != 0
	}
	return true
}

// integer returns a numeric member as an int, or 0 when it is absent or not
// a whole number.
func (f fields) integer(name string) int {
	n, err := strconv.Atoi(f.text(name))
	if err != nil {
		return 0
	}
	return n
}

// raw returns the member untouched, or nil.
func (f fields) raw(name string) json.RawMessage {
	return f[name]
}
