package service

import (
	"context"
	"errors"
	"testing"

	"karhubty-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReviewService_Create(t *testing.T) {
	ctx := context.Background()

	setup := func() (*MockReviewRepo, *MockRentalRepo, *MockCarRepo, ReviewService) {
		reviews := new(MockReviewRepo)
		rentals := new(MockRentalRepo)
		cars := new(MockCarRepo)
		cars.On("GetByID", ctx, int64(5)).Return(&domain.Car{ID: 5}, nil)
		return reviews, rentals, cars, NewReviewService(reviews, rentals, cars)
	}

	t.Run("Success Refreshes Rating", func(t *testing.T) {
		reviews, rentals, cars, svc := setup()
		rentals.On("HasRentalForCar", ctx, int64(7), int64(5), reviewableStatuses).Return(true, nil)
		reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
		reviews.On("AverageRating", ctx, int64(5)).Return(4.5, nil)
		cars.On("UpdateRating", ctx, int64(5), 4.5).Return(nil)

		review, err := svc.Create(ctx, 7, 5, 42, 4, "  Clean car  ")
		require.NoError(t, err)
		assert.Equal(t, "Clean car", review.Comment)
		assert.True(t, review.IsApproved)
		cars.AssertCalled(t, "UpdateRating", ctx, int64(5), 4.5)
	})

	t.Run("Rating Failure Is Not Fatal", func(t *testing.T) {
		reviews, rentals, _, svc := setup()
		rentals.On("HasRentalForCar", ctx, int64(7), int64(5), reviewableStatuses).Return(true, nil)
		reviews.On("Create", ctx, mock.Anything).Return(nil)
		reviews.On("AverageRating", ctx, int64(5)).Return(0.0, errors.New("timeout"))

		_, err := svc.Create(ctx, 7, 5, 0, 5, "")
		assert.NoError(t, err)
	})

	t.Run("Invalid Rating", func(t *testing.T) {
		_, _, _, svc := setup()
		for _, rating := range []int{0, 6} {
			_, err := svc.Create(ctx, 7, 5, 42, rating, "")
			assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))
		}
	})

	t.Run("Given Rental Id Is Not Checked On Its Own", func(t *testing.T) {
		reviews, rentals, cars, svc := setup()
		// Rental 42 may still be pending; another completed rental of car 5 qualifies.
		rentals.On("HasRentalForCar", ctx, int64(7), int64(5), reviewableStatuses).Return(true, nil)
		reviews.On("Create", ctx, mock.Anything).Return(nil)
		reviews.On("AverageRating", ctx, int64(5)).Return(4.0, nil)
		cars.On("UpdateRating", ctx, int64(5), 4.0).Return(nil)

		review, err := svc.Create(ctx, 7, 5, 42, 4, "")
		require.NoError(t, err)
		assert.Equal(t, int64(42), review.RentalID)
		rentals.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Given Rental Id Without Qualifying Rental", func(t *testing.T) {
		_, rentals, _, svc := setup()
		rentals.On("HasRentalForCar", ctx, int64(7), int64(5), reviewableStatuses).Return(false, nil)

		_, err := svc.Create(ctx, 7, 5, 42, 4, "")
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	t.Run("Never Rented", func(t *testing.T) {
		_, rentals, _, svc := setup()
		rentals.On("HasRentalForCar", ctx, int64(7), int64(5), reviewableStatuses).Return(false, nil)

		_, err := svc.Create(ctx, 7, 5, 0, 4, "")
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})
}

func TestReviewService_Ownership(t *testing.T) {
	ctx := context.Background()
	reviews := new(MockReviewRepo)
	cars := new(MockCarRepo)
	svc := NewReviewService(reviews, new(MockRentalRepo), cars)
	reviews.On("GetByID", ctx, int64(1)).Return(&domain.Review{ID: 1, UserID: 7, CarID: 5, Rating: 3}, nil)

	_, err := svc.Update(ctx, 1, 8, 4, "")
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	assert.Equal(t, domain.KindForbidden, domain.KindOf(svc.Delete(ctx, 1, 8)))
}
