package rooms

import (
	"context"
	"encoding/json"

	"github.com/churchconnect/realtime/internal/domain"
	"github.com/churchconnect/realtime/internal/infrastructure/logging"
	"github.com/churchconnect/realtime/internal/infrastructure/worker"
	"github.com/churchconnect/realtime/internal/infrastructure/ws"
)

// EventHandler drives live event-statistics streams. The room is
// push-only: updates come from the task dispatcher, clients only receive.
type EventHandler struct {
	store  domain.Store
	pool   *worker.Pool
	logger logging.Logger
}

func NewEventHandler(store domain.Store, pool *worker.Pool, logger logging.Logger) *EventHandler {
	return &EventHandler{
		store:  store,
		pool:   pool,
		logger: logger,
	}
}

// OnJoin sends the current aggregate stats. A missing event or an
// unavailable store yields the empty stats payload, never a failed join.
func (h *EventHandler) OnJoin(ctx context.Context, client Session) {
	stats, err := worker.Dispatch(ctx, h.pool, func(ctx context.Context) (*domain.EventStats, error) {
		return h.store.GetEventStats(ctx, client.Room().Target)
	})
	if err != nil || stats == nil {
		if err != nil {
			h.logger.Warn(logging.MongoDB, logging.Persistence, "failed to load event stats", map[logging.ExtraKey]any{
				logging.RoomAddress:  client.Room().Address(),
				logging.ErrorMessage: err.Error(),
			})
		}
		stats = &domain.EventStats{}
	}

	client.Send(ws.NewEventStats(*stats))
}

// OnMessage ignores well-formed frames; the room accepts no inbound
// messages. Malformed JSON still gets the standard error reply.
func (h *EventHandler) OnMessage(ctx context.Context, client Session, raw []byte) {
	var msg ws.InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		client.Send(ws.NewError("Invalid JSON"))
	}
}

func (h *EventHandler) OnLeave(ctx context.Context, client Session) {}
