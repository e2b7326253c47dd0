// Command dispatch pushes a single event into a room through the broker.
// Platform jobs (and operators) use it to reach connected clients without
// holding a WebSocket themselves: notification pushes, event-stats
// refreshes, free-form updates.
//
//	dispatch -room notifications:17 -message "New event posted"
//	dispatch -room event:55 -payload '{"type":"event_stats","stats":{...}}'
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"time"

	"github.com/churchconnect/realtime/internal/domain"
	"github.com/churchconnect/realtime/internal/infrastructure/configs"
	"github.com/churchconnect/realtime/internal/infrastructure/events"
	"github.com/churchconnect/realtime/internal/infrastructure/messaging"
	"github.com/churchconnect/realtime/internal/infrastructure/ws"
	"github.com/google/uuid"
)

func main() {
	var (
		roomAddress = flag.String("room", "", "target room address, e.g. notifications:17")
		message     = flag.String("message", "", "notification text (wrapped in a notification frame)")
		title       = flag.String("title", "", "notification title")
		link        = flag.String("link", "", "notification link")
		payload     = flag.String("payload", "", "raw JSON frame to publish as-is")
		timeout     = flag.Duration("timeout", 10*time.Second, "publish timeout")
		configFlag  = flag.String("config", "", "path to config file")
	)
	flag.Parse()

	if *roomAddress == "" {
		log.Fatal("missing -room")
	}
	if (*message == "") == (*payload == "") {
		log.Fatal("exactly one of -message or -payload is required")
	}

	room, err := domain.ParseRoom(*roomAddress)
	if err != nil {
		log.Fatalf("invalid room %q: %v", *roomAddress, err)
	}

	event := json.RawMessage(*payload)
	if *message != "" {
		event = ws.NewNotification(domain.Notification{
			ID:        uuid.NewString(),
			Title:     *title,
			Message:   *message,
			Link:      *link,
			CreatedAt: time.Now().UTC(),
		})
	} else if !json.Valid(event) {
		log.Fatal("-payload is not valid JSON")
	}

	cfg, err := configs.Load(configs.DetermineConfigPath(*configFlag))
	if err != nil {
		log.Fatal(err)
	}

	rabbitmq, err := messaging.NewRabbitMQ(cfg.RabbitMQ.URI)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer rabbitmq.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	publisher := events.NewRoomEventPublisher(rabbitmq)
	if err := publisher.Publish(ctx, room, event); err != nil {
		log.Fatalf("publish failed: %v", err)
	}

	log.Printf("published to %s", room.Address())
}
