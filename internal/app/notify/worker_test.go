package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinbrio/internal/app/model"
	"kinbrio/internal/pkg/errs"
)

type memOutbox struct {
	pending   []model.OutboxMessage
	delivered map[uuid.UUID][]uuid.UUID
	failed    []model.OutboxMessage
}

func (m *memOutbox) ClaimDueNotifications(_ context.Context, now, _ int64, limit int) ([]model.OutboxMessage, error) {
	var out []model.OutboxMessage
	for _, msg := range m.pending {
		if msg.NextAttemptAt <= now && len(out) < limit {
			out = append(out, msg)
		}
	}
	m.pending = nil
	return out, nil
}

func (m *memOutbox) MarkNotificationDelivered(_ context.Context, key uuid.UUID, rooms []uuid.UUID, _ int64) error {
	if m.delivered == nil {
		m.delivered = map[uuid.UUID][]uuid.UUID{}
	}
	m.delivered[key] = rooms
	return nil
}

func (m *memOutbox) MarkNotificationFailed(_ context.Context, msg model.OutboxMessage) error {
	m.failed = append(m.failed, msg)
	return nil
}

// scriptedChat fails the first sends listed in failures, then succeeds.
type scriptedChat struct {
	failures []error
	sent     []string
}

func (c *scriptedChat) WhoAmI(context.Context, string, string) (string, error) { return "@ana:hs", nil }

func (c *scriptedChat) JoinedRooms(context.Context, string, string) (map[string]struct{}, error) {
	return map[string]struct{}{"!a:hs": {}, "!b:hs": {}}, nil
}

func (c *scriptedChat) SendText(_ context.Context, _, _, roomID, _ string) error {
	if len(c.failures) > 0 {
		err := c.failures[0]
		c.failures = c.failures[1:]
		return err
	}
	c.sent = append(c.sent, roomID)
	return nil
}

type recordingPublisher struct {
	bodies []string
}

func (p *recordingPublisher) Publish(_ uuid.UUID, _ model.NotificationCategory, body string, _ int64) {
	p.bodies = append(p.bodies, body)
}

func newTestWorker(store *memOutbox, rooms roomList, chat Chat, pub Publisher) *Worker {
	w := NewWorker(store, NewFanout(rooms, chat), pub, WorkerConfig{
		RetryBase:   time.Millisecond,
		RetryCount:  2,
		MaxAttempts: 3,
	})
	w.now = func() time.Time { return time.Unix(1000, 0) }
	return w
}

func TestWorkerDeliversAndPublishes(t *testing.T) {
	org := uuid.New()
	rooms := roomList{room(org, "!a:hs", model.CategoryTask), room(org, "!b:hs", model.CategoryTask)}
	msg := model.OutboxMessage{Key: uuid.New(), OrganizationKey: org, Category: model.CategoryTask, Body: "hi"}
	store := &memOutbox{pending: []model.OutboxMessage{msg}}
	chat := &scriptedChat{failures: []error{errs.WithKind(errs.KindUpstream, errors.New("502"))}}
	pub := &recordingPublisher{}

	n, err := newTestWorker(store, rooms, chat, pub).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, []string{"!a:hs", "!b:hs"}, chat.sent)
	assert.ElementsMatch(t, []uuid.UUID{rooms[0].Key, rooms[1].Key}, store.delivered[msg.Key])
	assert.Empty(t, store.failed)
	assert.Equal(t, []string{"hi"}, pub.bodies)
}

func TestWorkerReschedulesAfterRetriesRunOut(t *testing.T) {
	org := uuid.New()
	rooms := roomList{room(org, "!a:hs", model.CategoryTask), room(org, "!b:hs", model.CategoryTask)}
	msg := model.OutboxMessage{Key: uuid.New(), OrganizationKey: org, Category: model.CategoryTask, Body: "hi"}
	store := &memOutbox{pending: []model.OutboxMessage{msg}}

	upstream := errs.WithKind(errs.KindUpstream, errors.New("502"))
	// First room succeeds; every later send fails.
	chat := &failAfterChat{scriptedChat: scriptedChat{}, okSends: 1, err: upstream}
	pub := &recordingPublisher{}

	_, err := newTestWorker(store, rooms, chat, pub).RunOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, store.failed, 1)
	failed := store.failed[0]
	assert.Equal(t, model.OutboxPending, failed.Status)
	assert.Equal(t, int32(1), failed.Attempts)
	assert.Equal(t, []uuid.UUID{rooms[0].Key}, failed.DeliveredRooms)
	assert.Equal(t, int64(1030), failed.NextAttemptAt)
	assert.Contains(t, failed.LastError, "502")
	assert.Empty(t, pub.bodies)
	assert.Equal(t, []string{"!a:hs"}, chat.sent)
}

func TestWorkerMarksDeadOnRejectedToken(t *testing.T) {
	org := uuid.New()
	msg := model.OutboxMessage{Key: uuid.New(), OrganizationKey: org, Category: model.CategoryTask, Body: "hi"}
	store := &memOutbox{pending: []model.OutboxMessage{msg}}
	chat := &scriptedChat{failures: []error{errs.WithKind(errs.KindUnauthorized, errors.New("M_UNKNOWN_TOKEN"))}}

	_, err := newTestWorker(store, roomList{room(org, "!a:hs", model.CategoryTask)}, chat, nil).RunOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, store.failed, 1)
	assert.Equal(t, model.OutboxDead, store.failed[0].Status)
}

func TestWorkerMarksDeadAtMaxAttempts(t *testing.T) {
	org := uuid.New()
	msg := model.OutboxMessage{Key: uuid.New(), OrganizationKey: org, Category: model.CategoryTask, Body: "hi", Attempts: 2}
	store := &memOutbox{pending: []model.OutboxMessage{msg}}
	chat := &failAfterChat{err: errs.WithKind(errs.KindUpstream, errors.New("down"))}

	_, err := newTestWorker(store, roomList{room(org, "!a:hs", model.CategoryTask)}, chat, nil).RunOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, store.failed, 1)
	assert.Equal(t, model.OutboxDead, store.failed[0].Status)
	assert.Equal(t, int32(3), store.failed[0].Attempts)
}

func TestRescheduleDelayIsCapped(t *testing.T) {
	w := &Worker{cfg: WorkerConfig{RescheduleBase: time.Minute, RescheduleCap: 10 * time.Minute}}
	assert.Equal(t, time.Minute, w.rescheduleDelay(1))
	assert.Equal(t, 4*time.Minute, w.rescheduleDelay(3))
	assert.Equal(t, 10*time.Minute, w.rescheduleDelay(20))
}

// failAfterChat lets okSends messages through and fails everything after.
type failAfterChat struct {
	scriptedChat
	okSends int
	err     error
}

func (c *failAfterChat) SendText(_ context.Context, _, _, roomID, _ string) error {
	if c.okSends == 0 {
		return c.err
	}
	c.okSends--
	c.sent = append(c.sent, roomID)
	return nil
}
