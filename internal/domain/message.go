package domain

import "time"

// ChatMessage is a persisted group chat message. The gateway only ever
// creates these through Store.SaveChatMessage; the rest of the lifecycle
// belongs to the platform API.
type ChatMessage struct {
	ID        string    `json:"id" bson:"_id"`
	GroupID   string    `json:"group_id" bson:"group_id"`
	SenderID  string    `json:"user_id" bson:"sender_id"`
	Username  string    `json:"username" bson:"username"`
	Message   string    `json:"message" bson:"message"`
	CreatedAt time.Time `json:"timestamp" bson:"created_at"`
}

// Notification is a store-owned personal notification. The gateway only
// flips the read flag and relays pushes from the task dispatcher.
type Notification struct {
	ID          string    `json:"id" bson:"_id"`
	RecipientID string    `json:"recipient_id" bson:"recipient_id"`
	Title       string    `json:"title" bson:"title"`
	Message     string    `json:"message" bson:"message"`
	Link        string    `json:"link,omitempty" bson:"link,omitempty"`
	Read        bool      `json:"read" bson:"read"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// EventStats is the aggregate snapshot sent when a connection joins an
// event room. A missing event yields the zero value, not an error.
type EventStats struct {
	TotalRSVPs     int  `json:"total_rsvps" bson:"total_rsvps"`
	TotalCheckedIn int  `json:"total_checked_in" bson:"total_checked_in"`
	SpotsRemaining int  `json:"spots_remaining" bson:"spots_remaining"`
	IsFull         bool `json:"is_full" bson:"is_full"`
}
