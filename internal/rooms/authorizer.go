package rooms

import (
	"context"

	"github.com/churchconnect/realtime/internal/domain"
	"github.com/churchconnect/realtime/internal/infrastructure/logging"
	"github.com/churchconnect/realtime/internal/infrastructure/worker"
)

// Authorizer decides whether an identity may join a room. It is the only
// policy in the join path; transport concerns stay in the gateway.
type Authorizer struct {
	store  domain.Store
	pool   *worker.Pool
	logger logging.Logger

	// openEventStreams preserves the platform's historical behavior of
	// event-stats rooms being joinable by anyone, authenticated or not.
	openEventStreams bool
}

func NewAuthorizer(store domain.Store, pool *worker.Pool, logger logging.Logger, openEventStreams bool) *Authorizer {
	return &Authorizer{
		store:            store,
		pool:             pool,
		logger:           logger,
		openEventStreams: openEventStreams,
	}
}

// CanJoin returns nil when identity may join room. identity is nil for
// unauthenticated attempts.
func (a *Authorizer) CanJoin(ctx context.Context, identity *domain.Identity, room domain.Room) error {
	switch room.Kind {
	case domain.RoomKindNotifications:
		if identity == nil {
			return domain.ErrAuthenticationMissing
		}
		if identity.ID != room.Target {
			return domain.ErrAuthorizationDenied
		}
		return nil

	case domain.RoomKindChat:
		if identity == nil {
			return domain.ErrAuthenticationMissing
		}
		if !a.isMember(ctx, identity.ID, room.Target) {
			return domain.ErrAuthorizationDenied
		}
		return nil

	case domain.RoomKindEvent:
		if a.openEventStreams {
			return nil
		}
		if identity == nil {
			return domain.ErrAuthenticationMissing
		}
		return nil
	}

	return domain.ErrInvalidRoom
}

// isMember is fail-closed: a store error denies the join, it never crashes
// the connection attempt.
func (a *Authorizer) isMember(ctx context.Context, userID, groupID string) bool {
	ok, err := worker.Dispatch(ctx, a.pool, func(ctx context.Context) (bool, error) {
		return a.store.IsGroupMember(ctx, userID, groupID)
	})
	if err != nil {
		a.logger.Warn(logging.WebSocket, logging.Authorization, "membership check failed, denying join", map[logging.ExtraKey]any{
			logging.UserId:       userID,
			logging.ErrorMessage: err.Error(),
		})
		return false
	}

	return ok
}
