package service

import (
	"context"
	"io"
	"sync"
	"time"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}
func (m *MockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *MockUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockAgentRepo
type MockAgentRepo struct {
	mock.Mock
}

func (m *MockAgentRepo) Create(ctx context.Context, agent *domain.Agent) error {
	args := m.Called(ctx, agent)
	return args.Error(0)
}
func (m *MockAgentRepo) GetByID(ctx context.Context, id int64) (*domain.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}
func (m *MockAgentRepo) GetByEmail(ctx context.Context, email string) (*domain.Agent, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}
func (m *MockAgentRepo) Update(ctx context.Context, agent *domain.Agent) error {
	args := m.Called(ctx, agent)
	return args.Error(0)
}
func (m *MockAgentRepo) UpdateStatus(ctx context.Context, id int64, status domain.AgentStatus, approvalDate *time.Time) error {
	args := m.Called(ctx, id, status, approvalDate)
	return args.Error(0)
}
func (m *MockAgentRepo) List(ctx context.Context, filter domain.AgentFilter) ([]domain.Agent, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Agent), args.Error(1)
}

// MockCarRepo
type MockCarRepo struct {
	mock.Mock
}

func (m *MockCarRepo) Create(ctx context.Context, car *domain.Car) error {
	args := m.Called(ctx, car)
	return args.Error(0)
}
func (m *MockCarRepo) GetByID(ctx context.Context, id int64) (*domain.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}
func (m *MockCarRepo) GetByLicensePlate(ctx context.Context, plate string) (*domain.Car, error) {
	args := m.Called(ctx, plate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}
func (m *MockCarRepo) Update(ctx context.Context, car *domain.Car) error {
	args := m.Called(ctx, car)
	return args.Error(0)
}
func (m *MockCarRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockCarRepo) List(ctx context.Context, filter domain.CarFilter) ([]domain.Car, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Car), args.Error(1)
}
func (m *MockCarRepo) ListByAgent(ctx context.Context, agentID int64) ([]domain.Car, error) {
	args := m.Called(ctx, agentID)
	return args.Get(0).([]domain.Car), args.Error(1)
}
func (m *MockCarRepo) ListFeatured(ctx context.Context, limit int) ([]domain.Car, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Car), args.Error(1)
}
func (m *MockCarRepo) SetAvailability(ctx context.Context, id int64, available bool) error {
	args := m.Called(ctx, id, available)
	return args.Error(0)
}
func (m *MockCarRepo) UpdateRating(ctx context.Context, id int64, rating float64) error {
	args := m.Called(ctx, id, rating)
	return args.Error(0)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id int64) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) Update(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) List(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListActiveForCar(ctx context.Context, carID int64, from, to time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, carID, from, to)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListActiveForUser(ctx context.Context, userID int64, from, to time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListApprovedEndedBefore(ctx context.Context, date time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListPendingStartedBefore(ctx context.Context, date time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) HasRentalForCar(ctx context.Context, userID, carID int64, statuses []domain.RentalStatus) (bool, error) {
	args := m.Called(ctx, userID, carID, statuses)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalRepo) Stats(ctx context.Context, agentID *int64) (*domain.RentalStats, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalStats), args.Error(1)
}

// MockDocumentRepo
type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) Create(ctx context.Context, doc *domain.AgentDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}
func (m *MockDocumentRepo) GetByID(ctx context.Context, id int64) (*domain.AgentDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentDocument), args.Error(1)
}
func (m *MockDocumentRepo) Update(ctx context.Context, doc *domain.AgentDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}
func (m *MockDocumentRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockDocumentRepo) ListByAgent(ctx context.Context, agentID int64) ([]domain.AgentDocument, error) {
	args := m.Called(ctx, agentID)
	return args.Get(0).([]domain.AgentDocument), args.Error(1)
}
func (m *MockDocumentRepo) ListByAgentAndType(ctx context.Context, agentID int64, documentType string) ([]domain.AgentDocument, error) {
	args := m.Called(ctx, agentID, documentType)
	return args.Get(0).([]domain.AgentDocument), args.Error(1)
}
func (m *MockDocumentRepo) ListByStatus(ctx context.Context, status domain.DocumentStatus) ([]domain.AgentDocument, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.AgentDocument), args.Error(1)
}

// MockReviewRepo
type MockReviewRepo struct {
	mock.Mock
}

func (m *MockReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}
func (m *MockReviewRepo) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}
func (m *MockReviewRepo) Update(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}
func (m *MockReviewRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockReviewRepo) ListByCar(ctx context.Context, carID int64, approvedOnly bool) ([]domain.Review, error) {
	args := m.Called(ctx, carID, approvedOnly)
	return args.Get(0).([]domain.Review), args.Error(1)
}
func (m *MockReviewRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Review, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Review), args.Error(1)
}
func (m *MockReviewRepo) ListPending(ctx context.Context) ([]domain.Review, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Review), args.Error(1)
}
func (m *MockReviewRepo) AverageRating(ctx context.Context, carID int64) (float64, error) {
	args := m.Called(ctx, carID)
	return args.Get(0).(float64), args.Error(1)
}

// MockStatsRepo
type MockStatsRepo struct {
	mock.Mock
}

func (m *MockStatsRepo) PlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlatformStats), args.Error(1)
}
func (m *MockStatsRepo) RevenueByAgent(ctx context.Context) ([]domain.AgentRevenue, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.AgentRevenue), args.Error(1)
}
func (m *MockStatsRepo) CarEarningsByAgent(ctx context.Context, agentID int64, limit int) ([]domain.CarEarnings, error) {
	args := m.Called(ctx, agentID, limit)
	return args.Get(0).([]domain.CarEarnings), args.Error(1)
}

// fakeTransactor runs fn against the same mocks the service was built with.
type fakeTransactor struct {
	repos repository.TxRepositories
	calls int
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn func(repos repository.TxRepositories) error) error {
	f.calls++
	return fn(f.repos)
}

// MockStorage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, reader, size, contentType)
	return args.Error(0)
}
func (m *MockStorage) ReadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
func (m *MockStorage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}
func (m *MockStorage) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
func (m *MockStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Error(1)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, evt domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func (p *recordingPublisher) last() domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}
