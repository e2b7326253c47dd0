package ws

import (
	"encoding/json"
	"time"

	"github.com/churchconnect/realtime/internal/domain"
)

// Inbound frames. Clients send exactly one of these per message; unknown
// but well-formed types are ignored by the handlers.
type InboundMessage struct {
	Type           string `json:"type,omitempty"`
	NotificationID string `json:"notification_id,omitempty"`
	Message        string `json:"message,omitempty"`
}

// Payload structs
type WelcomePayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type NotificationPayload struct {
	Type         string `json:"type"`
	Notification any    `json:"notification"`
}

type ChatMessagePayload struct {
	Type    string          `json:"type"`
	Message ChatMessageBody `json:"message"`
}

type ChatMessageBody struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type MemberPayload struct {
	Type     string `json:"type"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type EventStatsPayload struct {
	Type  string            `json:"type"`
	Stats domain.EventStats `json:"stats"`
}

type EventUpdatePayload struct {
	Type   string `json:"type"`
	Update any    `json:"update"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewConnectionEstablished() []byte {
	return encode(WelcomePayload{
		Type:    ConnectionEstablished,
		Message: "Connected to notifications",
	})
}

func NewNotification(notification any) []byte {
	return encode(NotificationPayload{
		Type:         NotificationEvent,
		Notification: notification,
	})
}

func NewChatMessage(msg *domain.ChatMessage) []byte {
	return encode(ChatMessagePayload{
		Type: ChatMessageEvent,
		Message: ChatMessageBody{
			ID:        msg.ID,
			UserID:    msg.SenderID,
			Username:  msg.Username,
			Message:   msg.Message,
			Timestamp: msg.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}

func NewUserJoined(identity *domain.Identity) []byte {
	return encode(MemberPayload{
		Type:     UserJoined,
		UserID:   identity.ID,
		Username: identity.Username,
	})
}

func NewUserLeft(identity *domain.Identity) []byte {
	return encode(MemberPayload{
		Type:     UserLeft,
		UserID:   identity.ID,
		Username: identity.Username,
	})
}

func NewEventStats(stats domain.EventStats) []byte {
	return encode(EventStatsPayload{
		Type:  EventStats,
		Stats: stats,
	})
}

func NewEventUpdate(update any) []byte {
	return encode(EventUpdatePayload{
		Type:   EventUpdate,
		Update: update,
	})
}

func NewError(message string) []byte {
	return encode(ErrorPayload{
		Type:    ErrorEvent,
		Message: message,
	})
}

// encode never fails for the contract shapes above; a marshal error would
// mean a programming bug, so it degrades to a generic error frame.
func encode(payload any) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return []byte(`{"type":"error","message":"internal error"}`)
	}
	return data
}
