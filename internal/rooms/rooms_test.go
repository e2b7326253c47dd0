package rooms

import (
	"context"
	"sync"

	"github.com/churchconnect/realtime/internal/domain"
	"github.com/churchconnect/realtime/internal/infrastructure/bus"
	"github.com/churchconnect/realtime/internal/infrastructure/logging"
	"github.com/churchconnect/realtime/internal/infrastructure/metrics"
	"github.com/churchconnect/realtime/internal/infrastructure/worker"
)

// fakeSession records every frame handed to it. It doubles as a bus
// subscriber so tests can observe room broadcasts.
type fakeSession struct {
	id       string
	room     domain.Room
	identity *domain.Identity

	mu   sync.Mutex
	sent [][]byte
}

func (s *fakeSession) ID() string                 { return s.id }
func (s *fakeSession) Room() domain.Room          { return s.room }
func (s *fakeSession) Identity() *domain.Identity { return s.identity }

func (s *fakeSession) Send(event []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sent = append(s.sent, event)
	return true
}

func (s *fakeSession) received() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([][]byte(nil), s.sent...)
}

type fakeStore struct {
	mu sync.Mutex

	member    bool
	memberErr error

	saved   []*domain.ChatMessage
	saveErr error

	marked      []string
	markReadOK  bool
	markReadErr error

	stats    *domain.EventStats
	statsErr error
}

func (f *fakeStore) IsGroupMember(ctx context.Context, userID, groupID string) (bool, error) {
	return f.member, f.memberErr
}

func (f *fakeStore) SaveChatMessage(ctx context.Context, groupID, userID, username, text string) (*domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return nil, f.saveErr
	}

	msg := &domain.ChatMessage{
		ID:       "msg-1",
		GroupID:  groupID,
		SenderID: userID,
		Username: username,
		Message:  text,
	}
	f.saved = append(f.saved, msg)
	return msg, nil
}

func (f *fakeStore) MarkNotificationRead(ctx context.Context, notificationID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.markReadErr != nil {
		return false, f.markReadErr
	}
	f.marked = append(f.marked, notificationID)
	return f.markReadOK, nil
}

func (f *fakeStore) GetEventStats(ctx context.Context, eventID string) (*domain.EventStats, error) {
	return f.stats, f.statsErr
}

func (f *fakeStore) savedMessages() []*domain.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*domain.ChatMessage(nil), f.saved...)
}

func (f *fakeStore) markedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.marked...)
}

func newTestPool() *worker.Pool {
	return worker.NewPool(2, 8, logging.NewNopLogger())
}

func newTestBus() *bus.Bus {
	return bus.New(logging.NewNopLogger(), metrics.New())
}
