package ws

// Outbound frame types.
const (
	ConnectionEstablished = "connection_established"
	NotificationEvent     = "notification"
	ChatMessageEvent      = "message"
	UserJoined            = "user_joined"
	UserLeft              = "user_left"
	EventStats            = "event_stats"
	EventUpdate           = "update"
	ErrorEvent            = "error"
)

// Inbound message types.
const (
	MarkRead = "mark_read"
)
