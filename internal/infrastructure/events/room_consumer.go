package events

import (
	"context"
	"encoding/json"

	"github.com/churchconnect/realtime/internal/domain"
	"github.com/churchconnect/realtime/internal/infrastructure/bus"
	"github.com/churchconnect/realtime/internal/infrastructure/logging"
	"github.com/churchconnect/realtime/internal/infrastructure/messaging"
	"github.com/rabbitmq/amqp091-go"
)

// roomConsumer feeds broker envelopes into the local fanout bus. One runs
// per gateway instance; envelopes that originated from this instance's own
// bus were already delivered locally and are skipped.
type roomConsumer struct {
	rabbitmq *messaging.RabbitMQ
	bus      *bus.Bus
	logger   logging.Logger
}

func NewRoomConsumer(rabbitmq *messaging.RabbitMQ, b *bus.Bus, logger logging.Logger) *roomConsumer {
	return &roomConsumer{
		rabbitmq: rabbitmq,
		bus:      b,
		logger:   logger,
	}
}

func (c *roomConsumer) Listen(ctx context.Context) error {
	return c.rabbitmq.ConsumeMessages(ctx, func(ctx context.Context, msg amqp091.Delivery) error {
		var envelope messaging.RoomEnvelope
		if err := json.Unmarshal(msg.Body, &envelope); err != nil {
			c.logger.Warn(logging.RabbitMQ, logging.Fanout, "failed to unmarshal room envelope", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
			return err
		}

		if envelope.Origin == c.bus.Origin() {
			return nil
		}

		room, err := domain.ParseRoom(envelope.Room)
		if err != nil {
			c.logger.Warn(logging.RabbitMQ, logging.Fanout, "envelope for unparseable room", map[logging.ExtraKey]any{
				logging.RoomAddress:  envelope.Room,
				logging.ErrorMessage: err.Error(),
			})
			return err
		}

		c.bus.PublishLocal(room, envelope.Event)
		return nil
	})
}
