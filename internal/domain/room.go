package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	RoomKindNotifications RoomKind = "notifications"
	RoomKindChat          RoomKind = "chat"
	RoomKindEvent         RoomKind = "event"
)

var (
	ErrInvalidRoom   = errors.New("invalid room address")
	ErrInvalidTarget = errors.New("invalid room target")

	// Room targets are opaque word tokens (user ids, group ids, event ids).
	targetPattern = regexp.MustCompile(`^\w+$`)
)

type RoomKind string

// Room is a logical broadcast channel. It is never persisted; the address
// string is derived deterministically from kind and target.
type Room struct {
	Kind   RoomKind `json:"kind"`
	Target string   `json:"target"`
}

func NotificationsRoom(userID string) Room {
	return Room{Kind: RoomKindNotifications, Target: userID}
}

func ChatRoom(groupID string) Room {
	return Room{Kind: RoomKindChat, Target: groupID}
}

func EventRoom(eventID string) Room {
	return Room{Kind: RoomKindEvent, Target: eventID}
}

// Address returns the canonical room address, e.g. "chat:G42".
func (r Room) Address() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.Target)
}

func (r Room) String() string {
	return r.Address()
}

func (r Room) Validate() error {
	switch r.Kind {
	case RoomKindNotifications, RoomKindChat, RoomKindEvent:
	default:
		return ErrInvalidRoom
	}
	if !targetPattern.MatchString(r.Target) {
		return ErrInvalidTarget
	}
	return nil
}

// ParseRoom parses a canonical room address back into a Room.
func ParseRoom(address string) (Room, error) {
	kind, target, ok := strings.Cut(address, ":")
	if !ok {
		return Room{}, ErrInvalidRoom
	}

	room := Room{Kind: RoomKind(kind), Target: target}
	if err := room.Validate(); err != nil {
		return Room{}, err
	}

	return room, nil
}
