package rooms

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/churchconnect/realtime/internal/domain"
	"github.com/churchconnect/realtime/internal/infrastructure/bus"
	"github.com/churchconnect/realtime/internal/infrastructure/logging"
	"github.com/churchconnect/realtime/internal/infrastructure/validate"
	"github.com/churchconnect/realtime/internal/infrastructure/worker"
	"github.com/churchconnect/realtime/internal/infrastructure/ws"
)

const maxChatMessageLength = 5000

var validateChatMessage = validate.Field("message", validate.MaxLength(maxChatMessageLength))

// ChatHandler drives community group chat rooms: lifecycle broadcasts on
// join/leave, persist-then-publish for inbound messages.
type ChatHandler struct {
	store  domain.Store
	pool   *worker.Pool
	bus    *bus.Bus
	logger logging.Logger
}

func NewChatHandler(store domain.Store, pool *worker.Pool, b *bus.Bus, logger logging.Logger) *ChatHandler {
	return &ChatHandler{
		store:  store,
		pool:   pool,
		bus:    b,
		logger: logger,
	}
}

// OnJoin runs before the client enters the bus, so the user_joined
// broadcast reaches existing members only and the joiner gets no payload
// of their own.
func (h *ChatHandler) OnJoin(ctx context.Context, client Session) {
	if err := h.bus.Publish(ctx, client.Room(), ws.NewUserJoined(client.Identity())); err != nil {
		h.logger.Warn(logging.WebSocket, logging.Fanout, "failed to broadcast user_joined", map[logging.ExtraKey]any{
			logging.RoomAddress:  client.Room().Address(),
			logging.ErrorMessage: err.Error(),
		})
	}
}

func (h *ChatHandler) OnMessage(ctx context.Context, client Session, raw []byte) {
	var msg ws.InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		client.Send(ws.NewError("Invalid JSON"))
		return
	}

	// Blank and whitespace-only messages are dropped without a reply.
	if strings.TrimSpace(msg.Message) == "" {
		return
	}

	if err := validateChatMessage(msg.Message); err != nil {
		client.Send(ws.NewError(err.Error()))
		return
	}

	identity := client.Identity()
	room := client.Room()

	saved, err := worker.Dispatch(ctx, h.pool, func(ctx context.Context) (*domain.ChatMessage, error) {
		return h.store.SaveChatMessage(ctx, room.Target, identity.ID, identity.Username, msg.Message)
	})
	if err != nil {
		// An unsaved message is never broadcast; the sender alone is told.
		h.logger.Error(logging.MongoDB, logging.Persistence, "failed to persist chat message", map[logging.ExtraKey]any{
			logging.RoomAddress:  room.Address(),
			logging.UserId:       identity.ID,
			logging.ErrorMessage: err.Error(),
		})
		client.Send(ws.NewError("Failed to send message"))
		return
	}

	if err := h.bus.Publish(ctx, room, ws.NewChatMessage(saved)); err != nil {
		h.logger.Warn(logging.WebSocket, logging.Fanout, "failed to broadcast chat message", map[logging.ExtraKey]any{
			logging.RoomAddress:  room.Address(),
			logging.ErrorMessage: err.Error(),
		})
	}
}

// OnLeave runs after the client has left the bus; remaining members get a
// best-effort user_left broadcast.
func (h *ChatHandler) OnLeave(ctx context.Context, client Session) {
	if err := h.bus.Publish(ctx, client.Room(), ws.NewUserLeft(client.Identity())); err != nil {
		h.logger.Warn(logging.WebSocket, logging.Fanout, "failed to broadcast user_left", map[logging.ExtraKey]any{
			logging.RoomAddress:  client.Room().Address(),
			logging.ErrorMessage: err.Error(),
		})
	}
}
