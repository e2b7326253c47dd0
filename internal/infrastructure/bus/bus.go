// Package bus implements the group fanout bus: a concurrency-safe
// room-membership registry with join/leave/publish primitives. A Bus is an
// explicit instance created at startup and passed to the gateway and the
// room handlers; with a broker attached, publishes also reach the room
// members held by sibling gateway instances.
package bus

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/churchconnect/realtime/internal/domain"
	"github.com/churchconnect/realtime/internal/infrastructure/logging"
	"github.com/churchconnect/realtime/internal/infrastructure/messaging"
	"github.com/churchconnect/realtime/internal/infrastructure/metrics"
	"github.com/google/uuid"
)

// Subscriber is one live connection's inbox. Send must not block: it
// reports false when the event could not be buffered.
type Subscriber interface {
	ID() string
	Send(event []byte) bool
}

// Broker carries room envelopes across process boundaries.
type Broker interface {
	PublishMessage(ctx context.Context, routingKey string, body []byte) error
}

type Bus struct {
	origin   string
	registry *registry
	broker   Broker
	logger   logging.Logger
	metrics  *metrics.Metrics
	closed   atomic.Bool
}

func New(logger logging.Logger, m *metrics.Metrics) *Bus {
	return &Bus{
		origin:   uuid.NewString(),
		registry: newRegistry(),
		logger:   logger,
		metrics:  m,
	}
}

// Origin identifies this bus instance in broker envelopes, so the instance
// can skip deliveries it already performed locally.
func (b *Bus) Origin() string {
	return b.origin
}

// AttachBroker enables cross-process fanout. Call before serving traffic.
func (b *Bus) AttachBroker(broker Broker) {
	b.broker = broker
}

func (b *Bus) Join(room domain.Room, sub Subscriber) {
	if b.closed.Load() {
		return
	}

	b.registry.join(room.Address(), sub)
	b.metrics.ActiveConnections.WithLabelValues(string(room.Kind)).Inc()
}

// Leave is idempotent: leaving a room the subscriber is not in is a no-op,
// but the active-connections gauge is only decremented for real removals.
func (b *Bus) Leave(room domain.Room, sub Subscriber) {
	if b.registry.leave(room.Address(), sub) {
		b.metrics.ActiveConnections.WithLabelValues(string(room.Kind)).Dec()
	}
}

func (b *Bus) MemberCount(room domain.Room) int {
	return b.registry.count(room.Address())
}

// ActiveConnections reports the number of subscribers across all rooms.
func (b *Bus) ActiveConnections() int {
	return b.registry.total()
}

// Publish delivers event to every local member joined at call time, then
// forwards the envelope to the broker for sibling instances. There is no
// cross-process transactional guarantee: a connection joining concurrently
// with a publish may or may not receive it.
func (b *Bus) Publish(ctx context.Context, room domain.Room, event []byte) error {
	b.deliver(room, event)

	if b.broker == nil {
		return nil
	}

	envelope, err := json.Marshal(messaging.RoomEnvelope{
		Room:   room.Address(),
		Origin: b.origin,
		Event:  event,
	})
	if err != nil {
		return err
	}

	return b.broker.PublishMessage(ctx, room.Address(), envelope)
}

// PublishLocal delivers to local members only. The broker consumer uses it
// for envelopes received from other instances, which must not be forwarded
// again.
func (b *Bus) PublishLocal(room domain.Room, event []byte) {
	b.deliver(room, event)
}

func (b *Bus) deliver(room domain.Room, event []byte) {
	subs := b.registry.snapshot(room.Address())
	b.metrics.PublishedEvents.WithLabelValues(string(room.Kind)).Inc()

	for _, sub := range subs {
		if !sub.Send(event) {
			b.metrics.DroppedEvents.WithLabelValues(string(room.Kind)).Inc()
			b.logger.Warn(logging.WebSocket, logging.Fanout, "subscriber buffer full, event dropped", map[logging.ExtraKey]any{
				logging.RoomAddress:  room.Address(),
				logging.ConnectionId: sub.ID(),
			})
		}
	}
}

// Close empties the registry. Subscribers still connected are not closed
// here; the gateway owns connection teardown.
func (b *Bus) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}

	cleared := b.registry.clear()
	if len(cleared) > 0 {
		b.logger.Infof("fanout bus closed with %d live subscribers", len(cleared))
	}

	b.metrics.ActiveConnections.Reset()
}
