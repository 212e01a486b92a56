package logging

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/smazurov/audiohal/internal/halerr"
)

// Attribute keys the router logs under. Records carrying them are indexed by
// session in the history and promoted to top level journal fields.
const (
	KeyModule    = "module"
	KeySessionID = "session_id"
	KeyCategory  = "category"
	KeyUseCase   = "use_case"
	KeyDevices   = "devices"
	KeyError     = "error"
)

// Context is the routing state a record was logged under.
type Context struct {
	SessionID uint64 `json:"session_id,omitempty"`
	Category  string `json:"category,omitempty"`
	UseCase   string `json:"use_case,omitempty"`
	Devices   string `json:"devices,omitempty"`
	// ErrorCode is the halerr code of a logged error.
	ErrorCode string `json:"error_code,omitempty"`
}

// IsZero reports whether no routing attribute was seen.
func (c Context) IsZero() bool {
	return c == Context{}
}

// absorb stores a routing attribute in c. It reports false for keys that
// are not routing context, which callers keep as plain attributes.
func (c *Context) absorb(key string, v slog.Value) bool {
	v = v.Resolve()
	switch key {
	case KeySessionID:
		switch v.Kind() {
		case slog.KindUint64:
			c.SessionID = v.Uint64()
		case slog.KindInt64:
			if n := v.Int64(); n > 0 {
				c.SessionID = uint64(n)
			}
		default:
			return false
		}
	case KeyCategory:
		c.Category = v.String()
	case KeyUseCase:
		c.UseCase = v.String()
	case KeyDevices:
		c.Devices = deviceList(v)
	case KeyError:
		// The error itself stays an attribute; only its code is lifted.
		if err, ok := v.Any().(error); ok {
			c.ErrorCode = string(halerr.CodeOf(err))
		}
		return false
	default:
		return false
	}
	return true
}

// deviceList renders a device attribute logged either as a joined layout
// string or as a list of names.
func deviceList(v slog.Value) string {
	if v.Kind() != slog.KindAny {
		return v.String()
	}
	switch names := v.Any().(type) {
	case []string:
		return strings.Join(names, "|")
	case fmt.Stringer:
		return names.String()
	default:
		return fmt.Sprint(names)
	}
}

// errorText renders an error attribute as its message.
func errorText(v slog.Value) (string, bool) {
	if v.Kind() != slog.KindAny {
		return "", false
	}
	if err, ok := v.Any().(error); ok && err != nil {
		return err.Error(), true
	}
	return "", false
}
