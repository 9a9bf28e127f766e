package rules

import (
	"strings"

	"github.com/google/uuid"
)

// ActionType is what happens when a rules button is pressed.
type ActionType int

const (
	// ActionNone does nothing.
	ActionNone ActionType = iota
	// ActionCommand runs a command line as the console.
	ActionCommand
	// ActionDisconnect disconnects the player with a message.
	ActionDisconnect
)

var actionPrefixes = []struct {
	prefix string
	typ    ActionType
}{
	{"command", ActionCommand},
	{"disconnect", ActionDisconnect},
}

// Action is a parsed button action such as "command:say {name} joined".
type Action struct {
	Type  ActionType
	Value string
}

// ParseAction parses a configured action. The type prefix is matched case
// insensitively and separated from the value by one character, usually ':'.
// Unknown types and actions without a value parse to ActionNone.
func ParseAction(s string) Action {
	lower := strings.ToLower(s)
	for _, p := range actionPrefixes {
		if !strings.HasPrefix(lower, p.prefix) {
			continue
		}
		if len(p.prefix)+1 >= len(s) {
			return Action{}
		}
		return Action{Type: p.typ, Value: s[len(p.prefix)+1:]}
	}
	return Action{}
}

// Expand returns the action value with {uuid} and {name} replaced by the
// player's identity.
func (a Action) Expand(id uuid.UUID, name string) string {
	return strings.NewReplacer("{uuid}", id.String(), "{name}", name).Replace(a.Value)
}

func (t ActionType) String() string {
	switch t {
	case ActionCommand:
		return "command"
	case ActionDisconnect:
		return "disconnect"
	}
	return "none"
}
