package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"karhubty-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type funcHandler struct {
	name string
	fn   func(ctx context.Context, evt domain.Event) error
}

func (h funcHandler) Name() string { return h.name }

func (h funcHandler) Handle(ctx context.Context, evt domain.Event) error { return h.fn(ctx, evt) }

func TestDispatcher_DeliversToAllHandlers(t *testing.T) {
	var mu sync.Mutex
	seen := map[string][]domain.EventType{}
	record := func(name string) Handler {
		return funcHandler{name: name, fn: func(_ context.Context, evt domain.Event) error {
			mu.Lock()
			defer mu.Unlock()
			seen[name] = append(seen[name], evt.Type)
			return nil
		}}
	}

	d := NewDispatcher(Config{Workers: 1, QueueSize: 4}, record("a"), record("b"))
	d.Start(context.Background())

	d.Publish(context.Background(), domain.Event{Type: domain.EventRentalApproved})
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, []domain.EventType{domain.EventRentalApproved}, seen["a"])
	assert.Equal(t, []domain.EventType{domain.EventRentalApproved}, seen["b"])
}

func TestDispatcher_RetriesWithBackoff(t *testing.T) {
	var calls int32
	flaky := funcHandler{name: "flaky", fn: func(context.Context, domain.Event) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("smtp down")
		}
		return nil
	}}
	var other int32
	steady := funcHandler{name: "steady", fn: func(context.Context, domain.Event) error {
		atomic.AddInt32(&other, 1)
		return nil
	}}

	d := NewDispatcher(Config{Workers: 1, MaxRetries: 3, BaseBackoff: time.Millisecond}, steady, flaky)
	d.Start(context.Background())
	d.Publish(context.Background(), domain.Event{Type: domain.EventRentalRequested})
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&other), "a retry of one handler does not repeat the others")
}

func TestDispatcher_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	failing := funcHandler{name: "failing", fn: func(context.Context, domain.Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("always")
	}}

	d := NewDispatcher(Config{Workers: 1, MaxRetries: 2, BaseBackoff: time.Millisecond}, failing)
	d.Start(context.Background())
	d.Publish(context.Background(), domain.Event{Type: domain.EventRentalRequested})
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDispatcher_PublishNeverBlocks(t *testing.T) {
	block := make(chan struct{})
	slow := funcHandler{name: "slow", fn: func(context.Context, domain.Event) error {
		<-block
		return nil
	}}

	// Not started: nothing drains the queue.
	d := NewDispatcher(Config{Workers: 1, QueueSize: 1}, slow)

	done := make(chan struct{})
	go func() {
		d.Publish(context.Background(), domain.Event{Type: domain.EventRentalRequested})
		d.Publish(context.Background(), domain.Event{Type: domain.EventRentalRequested})
		d.Publish(context.Background(), domain.Event{Type: domain.EventRentalRequested})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
	assert.Len(t, d.jobs, 1)
	close(block)
}

func TestDispatcher_PublishAfterClose(t *testing.T) {
	d := NewDispatcher(Config{Workers: 1})
	d.Start(context.Background())
	require.NoError(t, d.Close(context.Background()))

	assert.NotPanics(t, func() {
		d.Publish(context.Background(), domain.Event{Type: domain.EventAgentApproved})
	})
}

func TestNotificationHandler_Broadcast(t *testing.T) {
	notes := new(MockNotificationRepo)
	users := new(MockUserRepo)
	h := NewNotificationHandler(notes, users)

	users.On("ListByRole", mock.Anything, domain.RoleSuperAdmin).
		Return([]domain.User{{ID: 1}, {ID: 2}}, nil)
	notes.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.RecipientType == domain.RecipientSuperAdmin && n.Type == domain.NotificationDocumentUploaded
	})).Return(nil).Twice()

	err := h.Handle(context.Background(), domain.Event{
		Type:             domain.EventDocumentUploaded,
		Recipient:        domain.Recipient{Type: domain.RecipientSuperAdminBroadcast},
		NotificationType: domain.NotificationDocumentUploaded,
		Title:            "New Document Uploaded",
	})
	assert.NoError(t, err)
	notes.AssertExpectations(t)
	users.AssertExpectations(t)
}

// flakyNotificationRepo fails the first insert for one recipient and counts
// stored rows per recipient.
type flakyNotificationRepo struct {
	MockNotificationRepo

	mu      sync.Mutex
	failFor int64
	failed  bool
	stored  map[int64]int
}

func (r *flakyNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.RecipientID == r.failFor && !r.failed {
		r.failed = true
		return errors.New("connection reset")
	}
	r.stored[n.RecipientID]++
	return nil
}

func TestDispatcher_BroadcastRetryDoesNotDuplicate(t *testing.T) {
	notes := &flakyNotificationRepo{failFor: 2, stored: map[int64]int{}}
	users := new(MockUserRepo)
	users.On("ListByRole", mock.Anything, domain.RoleSuperAdmin).
		Return([]domain.User{{ID: 1}, {ID: 2}, {ID: 3}}, nil)

	h := NewNotificationHandler(notes, users)
	d := NewDispatcher(Config{Workers: 1, MaxRetries: 2, BaseBackoff: time.Millisecond}, h)
	d.Start(context.Background())
	d.Publish(context.Background(), domain.Event{
		Type:             domain.EventDocumentUploaded,
		Recipient:        domain.Recipient{Type: domain.RecipientSuperAdminBroadcast},
		NotificationType: domain.NotificationDocumentUploaded,
		Title:            "New Document Uploaded",
	})
	require.NoError(t, d.Close(context.Background()))

	assert.True(t, notes.failed)
	assert.Equal(t, map[int64]int{1: 1, 2: 1, 3: 1}, notes.stored)
	assert.Empty(t, h.progress, "progress is dropped once the event is fully stored")
}

func TestNotificationHandler_StaleProgressExpires(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	h := NewNotificationHandler(new(MockNotificationRepo), new(MockUserRepo))
	h.now = func() time.Time { return now }

	admin := domain.Recipient{ID: 1, Type: domain.RecipientSuperAdmin}
	h.markStored("evt-1", admin)
	assert.True(t, h.stored("evt-1", admin))
	assert.False(t, h.stored("evt-2", admin))
	assert.False(t, h.stored("", admin))

	now = now.Add(progressTTL + time.Minute)
	h.markStored("evt-2", admin)
	assert.False(t, h.stored("evt-1", admin))
	assert.Len(t, h.progress, 1)
}

func TestNotificationHandler_Direct(t *testing.T) {
	notes := new(MockNotificationRepo)
	h := NewNotificationHandler(notes, new(MockUserRepo))

	notes.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.RecipientID == 4 && n.RecipientType == domain.RecipientAgent && *n.RelatedEntityID == 9
	})).Return(nil).Once()

	err := h.Handle(context.Background(), domain.Event{
		Recipient:         domain.Recipient{ID: 4, Type: domain.RecipientAgent},
		NotificationType:  domain.NotificationRentalRequest,
		RelatedEntityType: "rental",
		RelatedEntityID:   9,
	})
	assert.NoError(t, err)
	notes.AssertExpectations(t)
}

func TestEmailHandler(t *testing.T) {
	sender := new(MockEmailSender)
	h := NewEmailHandler(sender)

	assert.NoError(t, h.Handle(context.Background(), domain.Event{}), "events without email are skipped")

	sender.On("SendEmail", mock.Anything, "a@b.com", "Subject", "Body").Return(errors.New("smtp down")).Once()
	err := h.Handle(context.Background(), domain.Event{Email: &domain.EmailMessage{To: "a@b.com", Subject: "Subject", Body: "Body"}})
	assert.Error(t, err)
	sender.AssertExpectations(t)
}
