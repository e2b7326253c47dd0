package domain

import "context"

// Store is the boundary to the durable data store. Every call is a single
// synchronous read or write; callers are expected to run them off the
// connection goroutines (see the worker pool).
type Store interface {
	// IsGroupMember reports whether an active membership record exists
	// for (userID, groupID).
	IsGroupMember(ctx context.Context, userID, groupID string) (bool, error)

	// SaveChatMessage persists a chat message and returns it with the
	// generated id and timestamp filled in.
	SaveChatMessage(ctx context.Context, groupID, userID, username, text string) (*ChatMessage, error)

	// MarkNotificationRead flips the read flag. It returns false when no
	// such notification exists.
	MarkNotificationRead(ctx context.Context, notificationID string) (bool, error)

	// GetEventStats returns the aggregate stats for an event, or the zero
	// value when the event does not exist.
	GetEventStats(ctx context.Context, eventID string) (*EventStats, error)
}
