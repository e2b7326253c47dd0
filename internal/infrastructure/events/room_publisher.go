package events

import (
	"context"
	"encoding/json"

	"github.com/churchconnect/realtime/internal/domain"
	"github.com/churchconnect/realtime/internal/infrastructure/messaging"
	"github.com/google/uuid"
)

// RoomEventPublisher pushes events into rooms from outside any connection's
// context. It is the entry point for the external task dispatcher: the job
// queue publishes here and every gateway instance fans out to its local
// members.
type RoomEventPublisher struct {
	rabbitmq *messaging.RabbitMQ
	origin   string
}

func NewRoomEventPublisher(rabbitmq *messaging.RabbitMQ) *RoomEventPublisher {
	return &RoomEventPublisher{
		rabbitmq: rabbitmq,
		origin:   uuid.NewString(),
	}
}

// Publish wraps event in a room envelope and hands it to the broker. The
// event must already be the outbound frame shape for the room's kind.
func (p *RoomEventPublisher) Publish(ctx context.Context, room domain.Room, event any) error {
	if err := room.Validate(); err != nil {
		return err
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return err
	}

	envelope, err := json.Marshal(messaging.RoomEnvelope{
		Room:   room.Address(),
		Origin: p.origin,
		Event:  eventJSON,
	})
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, room.Address(), envelope)
}
