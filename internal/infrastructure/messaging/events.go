package messaging

import "encoding/json"

// RoomEnvelope is the wire shape crossing the broker: the room address plus
// the already-encoded event frame, delivered verbatim to room members.
type RoomEnvelope struct {
	Room   string          `json:"room"`
	Origin string          `json:"origin,omitempty"`
	Event  json.RawMessage `json:"event"`
}
