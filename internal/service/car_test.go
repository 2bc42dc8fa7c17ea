package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"karhubty-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCarFixture() (*MockCarRepo, *MockAgentRepo, *MockStorage, CarService) {
	cars := new(MockCarRepo)
	agents := new(MockAgentRepo)
	store := new(MockStorage)
	return cars, agents, store, NewCarService(cars, agents, store)
}

func newListing() *domain.Car {
	return &domain.Car{
		Brand:          "Renault",
		Model:          "Clio",
		Year:           2023,
		LicensePlate:   "12345-a-16",
		FuelType:       "Diesel",
		Transmission:   "Manual",
		Seats:          5,
		Category:       "Compact",
		PricePerDay:    domain.MoneyFromFloat(45),
		GuaranteePrice: domain.MoneyFromFloat(300),
	}
}

func TestCarService_AddCar(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cars, agents, store, svc := newCarFixture()
		agents.On("GetByID", ctx, int64(3)).Return(&domain.Agent{ID: 3, AccountStatus: domain.AgentStatusApproved}, nil)
		cars.On("GetByLicensePlate", ctx, "12345-A-16").Return(nil, domain.ErrCarNotFound)
		store.On("SaveFile", ctx, mock.MatchedBy(func(key string) bool { return strings.HasPrefix(key, "cars/3/") }),
			mock.Anything, int64(3), "image/png").Return(nil)
		cars.On("Create", ctx, mock.AnythingOfType("*domain.Car")).Return(nil)

		car, err := svc.AddCar(ctx, 3, newListing(), []domain.Upload{{FileName: "front.png", ContentType: "image/png", Data: []byte("png")}})
		require.NoError(t, err)
		assert.Equal(t, int64(3), car.AgentID)
		assert.True(t, car.IsAvailable)
		assert.Zero(t, car.AverageRating)
		assert.Equal(t, "12345-A-16", car.LicensePlate)
		assert.Len(t, car.Images, 1)
	})

	t.Run("Agent In Verification Is Forbidden", func(t *testing.T) {
		_, agents, _, svc := newCarFixture()
		agents.On("GetByID", ctx, int64(3)).Return(&domain.Agent{ID: 3, AccountStatus: domain.AgentStatusInVerification}, nil)

		_, err := svc.AddCar(ctx, 3, newListing(), nil)
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	t.Run("Duplicate Plate", func(t *testing.T) {
		cars, agents, _, svc := newCarFixture()
		agents.On("GetByID", ctx, int64(3)).Return(&domain.Agent{ID: 3, AccountStatus: domain.AgentStatusApproved}, nil)
		cars.On("GetByLicensePlate", ctx, "12345-A-16").Return(&domain.Car{ID: 1}, nil)

		_, err := svc.AddCar(ctx, 3, newListing(), nil)
		assert.ErrorIs(t, err, domain.ErrLicensePlateTaken)
	})

	t.Run("Too Many Images", func(t *testing.T) {
		_, agents, _, svc := newCarFixture()
		agents.On("GetByID", ctx, int64(3)).Return(&domain.Agent{ID: 3, AccountStatus: domain.AgentStatusApproved}, nil)

		images := make([]domain.Upload, domain.MaxCarImages+1)
		for i := range images {
			images[i] = domain.Upload{FileName: "x.jpg", ContentType: "image/jpeg", Data: []byte("x")}
		}
		_, err := svc.AddCar(ctx, 3, newListing(), images)
		assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))
	})

	t.Run("Cleans Up Images When Insert Fails", func(t *testing.T) {
		cars, agents, store, svc := newCarFixture()
		agents.On("GetByID", ctx, int64(3)).Return(&domain.Agent{ID: 3, AccountStatus: domain.AgentStatusApproved}, nil)
		cars.On("GetByLicensePlate", ctx, mock.Anything).Return(nil, domain.ErrCarNotFound)
		store.On("SaveFile", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		store.On("DeleteFile", ctx, mock.Anything).Return(nil)
		cars.On("Create", ctx, mock.Anything).Return(domain.ErrLicensePlateTaken.Wrap(errors.New("23505")))

		_, err := svc.AddCar(ctx, 3, newListing(), []domain.Upload{{FileName: "a.jpg", ContentType: "image/jpeg", Data: []byte("a")}})
		assert.ErrorIs(t, err, domain.ErrLicensePlateTaken)
		store.AssertNumberOfCalls(t, "DeleteFile", 1)
	})
}

func TestCarService_Ownership(t *testing.T) {
	ctx := context.Background()
	cars, _, store, svc := newCarFixture()
	owned := &domain.Car{ID: 5, AgentID: 3, Brand: "Dacia", Model: "Logan", LicensePlate: "X", PricePerDay: 100, Images: []string{"cars/3/a.jpg"}}
	cars.On("GetByID", ctx, int64(5)).Return(owned, nil)
	cars.On("Delete", ctx, int64(5)).Return(nil)
	store.On("DeleteFile", ctx, "cars/3/a.jpg").Return(nil)

	err := svc.DeleteCar(ctx, 4, 5)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	_, err = svc.SetAvailability(ctx, 4, 5, false)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	require.NoError(t, svc.DeleteCar(ctx, 3, 5))
	store.AssertCalled(t, "DeleteFile", ctx, "cars/3/a.jpg")
}

func TestCarService_ListCars_HidesUnavailable(t *testing.T) {
	ctx := context.Background()
	cars, _, _, svc := newCarFixture()
	cars.On("List", ctx, domain.CarFilter{Category: "SUV"}).Return([]domain.Car{{ID: 1}}, nil)

	list, err := svc.ListCars(ctx, domain.CarFilter{Category: "SUV", IncludeUnavailable: true})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
