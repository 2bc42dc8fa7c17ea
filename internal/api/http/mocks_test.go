package http

import (
	"context"
	"time"

	"karhubty-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) Create(ctx context.Context, userID, carID int64, startDate, endDate time.Time) (*domain.Rental, error) {
	args := m.Called(ctx, userID, carID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) Approve(ctx context.Context, rentalID, agentID int64) (*domain.Rental, error) {
	args := m.Called(ctx, rentalID, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) Reject(ctx context.Context, rentalID, agentID int64) (*domain.Rental, error) {
	args := m.Called(ctx, rentalID, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) Cancel(ctx context.Context, rentalID, userID int64) (*domain.Rental, error) {
	args := m.Called(ctx, rentalID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) Complete(ctx context.Context, rentalID int64) (*domain.Rental, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) CalculatePrice(ctx context.Context, carID int64, startDate, endDate time.Time) (*domain.PriceQuote, error) {
	args := m.Called(ctx, carID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PriceQuote), args.Error(1)
}

func (m *MockRentalService) CheckUserOverlap(ctx context.Context, userID int64, startDate, endDate time.Time) (bool, *domain.Rental, error) {
	args := m.Called(ctx, userID, startDate, endDate)
	var r *domain.Rental
	if args.Get(1) != nil {
		r = args.Get(1).(*domain.Rental)
	}
	return args.Bool(0), r, args.Error(2)
}

func (m *MockRentalService) GetStats(ctx context.Context, agentID *int64) (*domain.RentalStats, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalStats), args.Error(1)
}

func (m *MockRentalService) Get(ctx context.Context, rentalID int64, caller domain.Account) (*domain.Rental, error) {
	args := m.Called(ctx, rentalID, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) ListByUser(ctx context.Context, userID int64) ([]domain.Rental, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockRentalService) ListByAgent(ctx context.Context, agentID int64, status domain.RentalStatus) ([]domain.Rental, error) {
	args := m.Called(ctx, agentID, status)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockRentalService) ListAll(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockRentalService) CompleteEndedRentals(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockRentalService) ExpireStalePending(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

type MockCarService struct {
	mock.Mock
}

func (m *MockCarService) AddCar(ctx context.Context, agentID int64, car *domain.Car, images []domain.Upload) (*domain.Car, error) {
	args := m.Called(ctx, agentID, car, images)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *MockCarService) GetCar(ctx context.Context, carID int64) (*domain.Car, error) {
	args := m.Called(ctx, carID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *MockCarService) ListCars(ctx context.Context, filter domain.CarFilter) ([]domain.Car, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Car), args.Error(1)
}

func (m *MockCarService) ListByAgent(ctx context.Context, agentID int64) ([]domain.Car, error) {
	args := m.Called(ctx, agentID)
	return args.Get(0).([]domain.Car), args.Error(1)
}

func (m *MockCarService) Featured(ctx context.Context) ([]domain.Car, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Car), args.Error(1)
}

func (m *MockCarService) UpdateCar(ctx context.Context, agentID, carID int64, update domain.CarUpdate) (*domain.Car, error) {
	args := m.Called(ctx, agentID, carID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *MockCarService) SetAvailability(ctx context.Context, agentID, carID int64, available bool) (*domain.Car, error) {
	args := m.Called(ctx, agentID, carID, available)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *MockCarService) DeleteCar(ctx context.Context, agentID, carID int64) error {
	return m.Called(ctx, agentID, carID).Error(0)
}

func (m *MockCarService) AdminListCars(ctx context.Context) ([]domain.Car, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Car), args.Error(1)
}

func (m *MockCarService) AdminDeleteCar(ctx context.Context, carID int64) error {
	return m.Called(ctx, carID).Error(0)
}
