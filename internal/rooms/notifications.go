package rooms

import (
	"context"
	"encoding/json"

	"github.com/churchconnect/realtime/internal/domain"
	"github.com/churchconnect/realtime/internal/infrastructure/logging"
	"github.com/churchconnect/realtime/internal/infrastructure/worker"
	"github.com/churchconnect/realtime/internal/infrastructure/ws"
)

// NotificationsHandler drives personal notification streams. Pushes arrive
// from the task dispatcher through the bus; the only inbound message is
// mark_read.
type NotificationsHandler struct {
	store  domain.Store
	pool   *worker.Pool
	logger logging.Logger
}

func NewNotificationsHandler(store domain.Store, pool *worker.Pool, logger logging.Logger) *NotificationsHandler {
	return &NotificationsHandler{
		store:  store,
		pool:   pool,
		logger: logger,
	}
}

func (h *NotificationsHandler) OnJoin(ctx context.Context, client Session) {
	client.Send(ws.NewConnectionEstablished())
}

func (h *NotificationsHandler) OnMessage(ctx context.Context, client Session, raw []byte) {
	var msg ws.InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		client.Send(ws.NewError("Invalid JSON"))
		return
	}

	if msg.Type != ws.MarkRead {
		return
	}

	// mark_read produces no outbound message; a missing notification or a
	// store failure is logged and swallowed.
	found, err := worker.Dispatch(ctx, h.pool, func(ctx context.Context) (bool, error) {
		return h.store.MarkNotificationRead(ctx, msg.NotificationID)
	})
	if err != nil {
		h.logger.Warn(logging.MongoDB, logging.Persistence, "failed to mark notification read", map[logging.ExtraKey]any{
			logging.UserId:       client.Room().Target,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	if !found {
		h.logger.Debugf("mark_read for unknown notification %q", msg.NotificationID)
	}
}

func (h *NotificationsHandler) OnLeave(ctx context.Context, client Session) {}
