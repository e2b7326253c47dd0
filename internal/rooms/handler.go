// Package rooms holds the room authorization policy and one message
// handler per room kind. Handlers define which inbound messages a room
// accepts, their side effects, and the outbound events they produce.
package rooms

import (
	"context"

	"github.com/churchconnect/realtime/internal/domain"
)

// Session is the handler's view of one live connection. Send must not
// block: it reports false when the event could not be buffered.
type Session interface {
	ID() string
	Room() domain.Room
	Identity() *domain.Identity
	Send(event []byte) bool
}

// Handler is the per-room-kind message handler. OnJoin runs after
// authorization but before the client is registered in the fanout bus, so
// join broadcasts reach existing members only. OnMessage is invoked
// serially per connection, in receipt order. OnLeave runs after the client
// has left the bus.
type Handler interface {
	OnJoin(ctx context.Context, client Session)
	OnMessage(ctx context.Context, client Session, raw []byte)
	OnLeave(ctx context.Context, client Session)
}

// Handlers maps room kinds to their handler.
type Handlers struct {
	Notifications Handler
	Chat          Handler
	Event         Handler
}

func (h Handlers) ForKind(kind domain.RoomKind) (Handler, bool) {
	switch kind {
	case domain.RoomKindNotifications:
		return h.Notifications, h.Notifications != nil
	case domain.RoomKindChat:
		return h.Chat, h.Chat != nil
	case domain.RoomKindEvent:
		return h.Event, h.Event != nil
	}
	return nil, false
}
