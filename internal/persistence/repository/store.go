package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/churchconnect/realtime/internal/domain"
	"github.com/churchconnect/realtime/internal/infrastructure/metrics"
	"github.com/churchconnect/realtime/internal/persistence/db"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoStore struct {
	db      *mongo.Database
	metrics *metrics.Metrics
}

func NewStore(database *mongo.Database, m *metrics.Metrics) domain.Store {
	return &mongoStore{
		db:      database,
		metrics: m,
	}
}

func (s *mongoStore) IsGroupMember(ctx context.Context, userID, groupID string) (bool, error) {
	defer s.observe("is_group_member", time.Now())

	collection := s.db.Collection(db.GroupMembersCollection)

	filter := bson.M{
		"user_id":   userID,
		"group_id":  groupID,
		"is_active": true,
	}

	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}

	return count > 0, nil
}

func (s *mongoStore) SaveChatMessage(ctx context.Context, groupID, userID, username, text string) (*domain.ChatMessage, error) {
	defer s.observe("save_chat_message", time.Now())

	collection := s.db.Collection(db.ChatMessagesCollection)

	message := &domain.ChatMessage{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		SenderID:  userID,
		Username:  username,
		Message:   text,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := collection.InsertOne(ctx, message); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}

	return message, nil
}

func (s *mongoStore) MarkNotificationRead(ctx context.Context, notificationID string) (bool, error) {
	defer s.observe("mark_notification_read", time.Now())

	collection := s.db.Collection(db.NotificationsCollection)

	update := bson.M{"$set": bson.M{"read": true}}

	result, err := collection.UpdateByID(ctx, notificationID, update)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}

	return result.MatchedCount > 0, nil
}

// eventDocument carries the persisted aggregates; spots and fullness are
// derived from capacity at read time.
type eventDocument struct {
	ID             string `bson:"_id"`
	Capacity       int    `bson:"capacity"`
	TotalRSVPs     int    `bson:"total_rsvps"`
	TotalCheckedIn int    `bson:"total_checked_in"`
}

func (s *mongoStore) GetEventStats(ctx context.Context, eventID string) (*domain.EventStats, error) {
	defer s.observe("get_event_stats", time.Now())

	collection := s.db.Collection(db.EventsCollection)

	var event eventDocument
	err := collection.FindOne(ctx, bson.M{"_id": eventID}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Unknown event: the caller sends the empty stats payload.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}

	spotsRemaining := event.Capacity - event.TotalRSVPs
	if spotsRemaining < 0 {
		spotsRemaining = 0
	}

	return &domain.EventStats{
		TotalRSVPs:     event.TotalRSVPs,
		TotalCheckedIn: event.TotalCheckedIn,
		SpotsRemaining: spotsRemaining,
		IsFull:         event.Capacity > 0 && event.TotalRSVPs >= event.Capacity,
	}, nil
}

func (s *mongoStore) observe(operation string, start time.Time) {
	s.metrics.StoreCallDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
