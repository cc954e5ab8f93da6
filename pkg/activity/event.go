package activity

import (
	"strings"
	"time"
)

// DefaultChannel tags events emitted without an explicit channel.
const DefaultChannel = "multiview"

// Event is a single auditable action performed against the layout manager.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Valid reports whether the event carries the minimum fields sinks need.
func (e Event) Valid() bool {
	return strings.TrimSpace(e.Verb) != "" && strings.TrimSpace(e.ObjectType) != ""
}

// NormalizeEvent trims identifiers, clones mutable fields and stamps
// OccurredAt when unset.
func NormalizeEvent(evt Event) Event {
	out := evt
	out.Verb = strings.TrimSpace(evt.Verb)
	out.ActorID = strings.TrimSpace(evt.ActorID)
	out.UserID = strings.TrimSpace(evt.UserID)
	out.TenantID = strings.TrimSpace(evt.TenantID)
	out.ObjectType = strings.TrimSpace(evt.ObjectType)
	out.ObjectID = strings.TrimSpace(evt.ObjectID)
	out.Channel = strings.TrimSpace(evt.Channel)
	out.DefinitionCode = strings.TrimSpace(evt.DefinitionCode)
	if evt.Recipients != nil {
		out.Recipients = append([]string(nil), evt.Recipients...)
	}
	if evt.Metadata != nil {
		out.Metadata = make(map[string]any, len(evt.Metadata))
		for k, v := range evt.Metadata {
			out.Metadata[k] = v
		}
	}
	if out.OccurredAt.IsZero() {
		out.OccurredAt = time.Now().UTC()
	}
	return out
}
