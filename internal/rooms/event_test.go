package rooms

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/churchconnect/realtime/internal/domain"
	"github.com/churchconnect/realtime/internal/infrastructure/logging"
	"github.com/churchconnect/realtime/internal/infrastructure/ws"
	"github.com/stretchr/testify/require"
)

func newEventFixture(store *fakeStore) (*EventHandler, *fakeSession, func()) {
	pool := newTestPool()

	sess := &fakeSession{
		id:   "conn-a",
		room: domain.EventRoom("55"),
	}

	h := NewEventHandler(store, pool, logging.NewNopLogger())
	return h, sess, pool.Close
}

func TestEvent_OnJoin_Sends_Stats_Snapshot(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{stats: &domain.EventStats{
		TotalRSVPs:     120,
		TotalCheckedIn: 80,
		SpotsRemaining: 30,
		IsFull:         false,
	}}
	h, sess, closePool := newEventFixture(store)
	defer closePool()

	h.OnJoin(context.Background(), sess)

	frames := sess.received()
	req.Len(frames, 1)

	var payload ws.EventStatsPayload
	req.NoError(json.Unmarshal(frames[0], &payload))
	req.Equal(ws.EventStats, payload.Type)
	req.Equal(120, payload.Stats.TotalRSVPs)
	req.Equal(80, payload.Stats.TotalCheckedIn)
	req.Equal(30, payload.Stats.SpotsRemaining)
	req.False(payload.Stats.IsFull)
}

func TestEvent_OnJoin_Missing_Event_Sends_Empty_Stats(t *testing.T) {
	req := require.New(t)
	h, sess, closePool := newEventFixture(&fakeStore{stats: nil})
	defer closePool()

	h.OnJoin(context.Background(), sess)

	frames := sess.received()
	req.Len(frames, 1)

	var payload ws.EventStatsPayload
	req.NoError(json.Unmarshal(frames[0], &payload))
	req.Equal(domain.EventStats{}, payload.Stats)
}

func TestEvent_OnJoin_Store_Failure_Sends_Empty_Stats(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{statsErr: errors.New("mongo down")}
	h, sess, closePool := newEventFixture(store)
	defer closePool()

	// The join still succeeds; the snapshot degrades to the zero value.
	h.OnJoin(context.Background(), sess)

	frames := sess.received()
	req.Len(frames, 1)

	var payload ws.EventStatsPayload
	req.NoError(json.Unmarshal(frames[0], &payload))
	req.Equal(domain.EventStats{}, payload.Stats)
}

func TestEvent_Inbound_Frames_Are_Ignored(t *testing.T) {
	req := require.New(t)
	h, sess, closePool := newEventFixture(&fakeStore{})
	defer closePool()

	h.OnMessage(context.Background(), sess, []byte(`{"type":"anything"}`))

	req.Empty(sess.received())
}

func TestEvent_Invalid_JSON_Still_Gets_Error_Reply(t *testing.T) {
	req := require.New(t)
	h, sess, closePool := newEventFixture(&fakeStore{})
	defer closePool()

	h.OnMessage(context.Background(), sess, []byte(`{{{`))

	frames := sess.received()
	req.Len(frames, 1)

	var payload ws.ErrorPayload
	req.NoError(json.Unmarshal(frames[0], &payload))
	req.Equal("Invalid JSON", payload.Message)
}
