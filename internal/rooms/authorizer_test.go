package rooms

import (
	"context"
	"errors"
	"testing"

	"github.com/churchconnect/realtime/internal/domain"
	"github.com/churchconnect/realtime/internal/infrastructure/logging"
	"github.com/stretchr/testify/require"
)

func TestCanJoin_Notifications_Requires_Identity(t *testing.T) {
	req := require.New(t)
	pool := newTestPool()
	defer pool.Close()

	a := NewAuthorizer(&fakeStore{}, pool, logging.NewNopLogger(), true)

	err := a.CanJoin(context.Background(), nil, domain.NotificationsRoom("17"))
	req.ErrorIs(err, domain.ErrAuthenticationMissing)
}

func TestCanJoin_Notifications_Own_Stream_Only(t *testing.T) {
	req := require.New(t)
	pool := newTestPool()
	defer pool.Close()

	a := NewAuthorizer(&fakeStore{}, pool, logging.NewNopLogger(), true)
	grace := &domain.Identity{ID: "17", Username: "grace"}

	req.NoError(a.CanJoin(context.Background(), grace, domain.NotificationsRoom("17")))

	err := a.CanJoin(context.Background(), grace, domain.NotificationsRoom("99"))
	req.ErrorIs(err, domain.ErrAuthorizationDenied)
}

func TestCanJoin_Chat_Requires_Membership(t *testing.T) {
	req := require.New(t)
	pool := newTestPool()
	defer pool.Close()

	grace := &domain.Identity{ID: "17", Username: "grace"}
	room := domain.ChatRoom("G42")

	member := NewAuthorizer(&fakeStore{member: true}, pool, logging.NewNopLogger(), true)
	req.NoError(member.CanJoin(context.Background(), grace, room))

	stranger := NewAuthorizer(&fakeStore{member: false}, pool, logging.NewNopLogger(), true)
	err := stranger.CanJoin(context.Background(), grace, room)
	req.ErrorIs(err, domain.ErrAuthorizationDenied)
}

func TestCanJoin_Chat_Anonymous_Is_Rejected(t *testing.T) {
	req := require.New(t)
	pool := newTestPool()
	defer pool.Close()

	a := NewAuthorizer(&fakeStore{member: true}, pool, logging.NewNopLogger(), true)

	err := a.CanJoin(context.Background(), nil, domain.ChatRoom("G42"))
	req.ErrorIs(err, domain.ErrAuthenticationMissing)
}

func TestCanJoin_Chat_Store_Failure_Denies(t *testing.T) {
	req := require.New(t)
	pool := newTestPool()
	defer pool.Close()

	store := &fakeStore{member: true, memberErr: errors.New("mongo down")}
	a := NewAuthorizer(store, pool, logging.NewNopLogger(), true)
	grace := &domain.Identity{ID: "17", Username: "grace"}

	// Fail closed: an unanswerable membership question is a denial.
	err := a.CanJoin(context.Background(), grace, domain.ChatRoom("G42"))
	req.ErrorIs(err, domain.ErrAuthorizationDenied)
}

func TestCanJoin_Event_Open_Streams(t *testing.T) {
	req := require.New(t)
	pool := newTestPool()
	defer pool.Close()

	a := NewAuthorizer(&fakeStore{}, pool, logging.NewNopLogger(), true)

	req.NoError(a.CanJoin(context.Background(), nil, domain.EventRoom("55")))
}

func TestCanJoin_Event_Closed_Streams_Require_Identity(t *testing.T) {
	req := require.New(t)
	pool := newTestPool()
	defer pool.Close()

	a := NewAuthorizer(&fakeStore{}, pool, logging.NewNopLogger(), false)

	err := a.CanJoin(context.Background(), nil, domain.EventRoom("55"))
	req.ErrorIs(err, domain.ErrAuthenticationMissing)

	grace := &domain.Identity{ID: "17", Username: "grace"}
	req.NoError(a.CanJoin(context.Background(), grace, domain.EventRoom("55")))
}

func TestCanJoin_Unknown_Kind(t *testing.T) {
	req := require.New(t)
	pool := newTestPool()
	defer pool.Close()

	a := NewAuthorizer(&fakeStore{}, pool, logging.NewNopLogger(), true)

	err := a.CanJoin(context.Background(), nil, domain.Room{Kind: "lobby", Target: "x"})
	req.ErrorIs(err, domain.ErrInvalidRoom)
}
