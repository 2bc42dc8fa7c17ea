package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"karhubty-backend/internal/config"
	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Only the batch methods are exercised; the embedded interface panics on anything else.
type mockRentalService struct {
	service.RentalService
	mock.Mock
}

func (m *mockRentalService) CompleteEndedRentals(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *mockRentalService) ExpireStalePending(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

type mockDocumentService struct {
	service.DocumentService
	mock.Mock
}

func (m *mockDocumentService) ListPendingDocuments(ctx context.Context) ([]domain.AgentDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AgentDocument), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, evt domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

var fixedNow = time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC)

func newRunner(rentals *mockRentalService, docs *mockDocumentService, pub *recordingPublisher) *JobRunner {
	jr := NewJobRunner(&Services{Rental: rentals, Document: docs}, pub, &config.Config{})
	jr.now = func() time.Time { return fixedNow }
	return jr
}

func TestCompleteEndedRentals(t *testing.T) {
	rentals := new(mockRentalService)
	rentals.On("CompleteEndedRentals", mock.Anything, fixedNow).Return(3, nil).Once()

	newRunner(rentals, nil, nil).CompleteEndedRentals()
	rentals.AssertExpectations(t)
}

func TestExpireStalePendingRentals_ErrorIsLogged(t *testing.T) {
	rentals := new(mockRentalService)
	rentals.On("ExpireStalePending", mock.Anything, fixedNow).Return(0, errors.New("db down")).Once()

	assert.NotPanics(t, func() { newRunner(rentals, nil, nil).ExpireStalePendingRentals() })
	rentals.AssertExpectations(t)
}

func TestRunWithRecovery_SwallowsPanics(t *testing.T) {
	jr := newRunner(nil, nil, nil)
	assert.NotPanics(t, func() {
		jr.runWithRecovery("Boom", func(ctx context.Context) { panic("boom") })
	})
}

func TestRemindPendingDocuments(t *testing.T) {
	t.Run("Publishes Broadcast Summary", func(t *testing.T) {
		docs := new(mockDocumentService)
		pub := &recordingPublisher{}
		docs.On("ListPendingDocuments", mock.Anything).Return([]domain.AgentDocument{
			{ID: 1, AgentID: 3, UploadedAt: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)},
			{ID: 2, AgentID: 3, UploadedAt: time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC)},
			{ID: 3, AgentID: 9, UploadedAt: time.Date(2026, 3, 8, 8, 0, 0, 0, time.UTC)},
		}, nil)

		newRunner(nil, docs, pub).RemindPendingDocuments()

		require.Len(t, pub.events, 1)
		evt := pub.events[0]
		assert.Equal(t, domain.EventDocumentsPending, evt.Type)
		assert.Equal(t, domain.RecipientSuperAdminBroadcast, evt.Recipient.Type)
		assert.Equal(t, "3 document(s) from 2 agent(s) are waiting for review, oldest uploaded 2026-03-08", evt.Message)
	})

	t.Run("Empty Queue Sends Nothing", func(t *testing.T) {
		docs := new(mockDocumentService)
		pub := &recordingPublisher{}
		docs.On("ListPendingDocuments", mock.Anything).Return([]domain.AgentDocument{}, nil)

		newRunner(nil, docs, pub).RemindPendingDocuments()
		assert.Empty(t, pub.events)
	})

	t.Run("List Error Sends Nothing", func(t *testing.T) {
		docs := new(mockDocumentService)
		pub := &recordingPublisher{}
		docs.On("ListPendingDocuments", mock.Anything).Return(nil, errors.New("timeout"))

		newRunner(nil, docs, pub).RemindPendingDocuments()
		assert.Empty(t, pub.events)
	})
}
