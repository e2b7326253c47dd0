// Package realtime is the connection gateway: it accepts WebSocket
// connection attempts on the three room routes, authorizes them, registers
// the connection in the fanout bus, and drives the per-connection
// lifecycle until disconnect.
package realtime

import (
	"context"
	"errors"
	"net/http"

	"github.com/churchconnect/realtime/internal/domain"
	"github.com/churchconnect/realtime/internal/infrastructure/bus"
	"github.com/churchconnect/realtime/internal/infrastructure/json"
	"github.com/churchconnect/realtime/internal/infrastructure/logging"
	"github.com/churchconnect/realtime/internal/infrastructure/metrics"
	"github.com/churchconnect/realtime/internal/infrastructure/tracing"
	"github.com/churchconnect/realtime/internal/infrastructure/ws"
	"github.com/churchconnect/realtime/internal/rooms"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type Handler struct {
	identity   domain.IdentityProvider
	authorizer *rooms.Authorizer
	handlers   rooms.Handlers
	bus        *bus.Bus
	metrics    *metrics.Metrics
	logger     logging.Logger
	tracer     trace.Tracer
	sendBuffer int
}

func NewHandler(
	identity domain.IdentityProvider,
	authorizer *rooms.Authorizer,
	handlers rooms.Handlers,
	b *bus.Bus,
	m *metrics.Metrics,
	logger logging.Logger,
	sendBuffer int,
) *Handler {
	return &Handler{
		identity:   identity,
		authorizer: authorizer,
		handlers:   handlers,
		bus:        b,
		metrics:    m,
		logger:     logger,
		tracer:     tracing.GetTracer("realtime-gateway"),
		sendBuffer: sendBuffer,
	}
}

// ServeNotifications godoc
// @Summary      Join a personal notification stream
// @Description  Establishes a WebSocket connection to the user's own notification room
// @Tags         realtime
// @Param        userId path string true "User ID"
// @Success      101 "Switching Protocols"
// @Failure      401 {object} map[string]interface{} "Unauthorized - missing or invalid identity"
// @Failure      403 {object} map[string]interface{} "Forbidden - not your notification stream"
// @Router       /ws/notifications/{userId} [get]
func (h *Handler) ServeNotifications(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.NotificationsRoom(chi.URLParam(r, "userId")))
}

// ServeChat godoc
// @Summary      Join a group chat room
// @Description  Establishes a WebSocket connection to a community group chat room
// @Tags         realtime
// @Param        groupId path string true "Group ID"
// @Success      101 "Switching Protocols"
// @Failure      401 {object} map[string]interface{} "Unauthorized - missing or invalid identity"
// @Failure      403 {object} map[string]interface{} "Forbidden - not a group member"
// @Router       /ws/chat/{groupId} [get]
func (h *Handler) ServeChat(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.ChatRoom(chi.URLParam(r, "groupId")))
}

// ServeEvents godoc
// @Summary      Join a live event statistics stream
// @Description  Establishes a WebSocket connection to an event's live stats room
// @Tags         realtime
// @Param        eventId path string true "Event ID"
// @Success      101 "Switching Protocols"
// @Router       /ws/events/{eventId} [get]
func (h *Handler) ServeEvents(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.EventRoom(chi.URLParam(r, "eventId")))
}

// serve walks a connection through Connecting → Authorizing → Joined.
// Every check happens before the upgrade: a rejected attempt is a plain
// HTTP error, the socket is never established and no room state changes.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, room domain.Room) {
	ctx, span := h.tracer.Start(r.Context(), "gateway.accept",
		trace.WithAttributes(attribute.String("room.address", room.Address())),
	)

	if err := room.Validate(); err != nil {
		span.End()
		h.reject(w, room, http.StatusNotFound, err)
		return
	}

	identity, err := h.identity.Resolve(r)
	if err != nil && !errors.Is(err, domain.ErrAuthenticationMissing) {
		span.End()
		h.reject(w, room, http.StatusUnauthorized, err)
		return
	}

	if err := h.authorizer.CanJoin(ctx, identity, room); err != nil {
		span.End()
		status := http.StatusForbidden
		if errors.Is(err, domain.ErrAuthenticationMissing) {
			status = http.StatusUnauthorized
		}
		h.reject(w, room, status, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	span.End()
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn(logging.WebSocket, logging.Connect, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.RoomAddress:  room.Address(),
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	client := ws.NewClient(conn, room, identity, h.sendBuffer)
	handler, ok := h.handlers.ForKind(room.Kind)
	if !ok {
		client.Close()
		return
	}

	go client.WritePump()

	// OnJoin runs before the bus registration: chat join broadcasts reach
	// existing members only, snapshots go straight to the client's buffer.
	handler.OnJoin(client.Context(), client)
	h.bus.Join(room, client)

	h.logger.Info(logging.WebSocket, logging.Connect, "connection joined", map[logging.ExtraKey]any{
		logging.RoomAddress:  room.Address(),
		logging.ConnectionId: client.ID(),
		logging.UserId:       userID(identity),
	})

	// Blocks until the client disconnects; inbound frames are handled
	// serially, in receipt order.
	client.ReadPump(func(ctx context.Context, raw []byte) {
		handler.OnMessage(ctx, client, raw)
	})

	h.disconnect(client, handler)
}

// disconnect deregisters the connection and lets the room handler say
// goodbye. Leave is idempotent, so repeated calls are harmless; the
// user_left broadcast fires once because ReadPump returns once.
func (h *Handler) disconnect(client *ws.Client, handler rooms.Handler) {
	h.bus.Leave(client.Room(), client)

	// The client's own context is already canceled; the leave broadcast
	// gets a fresh one.
	handler.OnLeave(context.Background(), client)
	client.Close()

	h.logger.Info(logging.WebSocket, logging.Disconnect, "connection closed", map[logging.ExtraKey]any{
		logging.RoomAddress:  client.Room().Address(),
		logging.ConnectionId: client.ID(),
		logging.UserId:       userID(client.Identity()),
	})
}

func (h *Handler) reject(w http.ResponseWriter, room domain.Room, status int, err error) {
	h.metrics.RejectedConnections.WithLabelValues(string(room.Kind), http.StatusText(status)).Inc()

	h.logger.Warn(logging.WebSocket, logging.Authorization, "connection rejected", map[logging.ExtraKey]any{
		logging.RoomAddress:  room.Address(),
		logging.StatusCode:   status,
		logging.ErrorMessage: err.Error(),
	})

	json.WriteError(w, status, err, "")
}

func userID(identity *domain.Identity) string {
	if identity == nil {
		return ""
	}
	return identity.ID
}
