package service

import (
	"context"
	"strings"
	"time"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository"
)

// reviewableStatuses are the rental states that entitle a user to review a car.
var reviewableStatuses = []domain.RentalStatus{domain.RentalStatusApproved, domain.RentalStatusCompleted}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	rentalRepo repository.RentalRepository
	carRepo    repository.CarRepository
	now        func() time.Time
}

func NewReviewService(reviewRepo repository.ReviewRepository, rentalRepo repository.RentalRepository, carRepo repository.CarRepository) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		rentalRepo: rentalRepo,
		carRepo:    carRepo,
		now:        time.Now,
	}
}

func (s *reviewService) Create(ctx context.Context, userID, carID, rentalID int64, rating int, comment string) (*domain.Review, error) {
	logger.EnterMethod("reviewService.Create", "userID", userID, "carID", carID, "rating", rating)

	if !domain.ValidRating(rating) {
		return nil, domain.BadRequest("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}
	if _, err := s.carRepo.GetByID(ctx, carID); err != nil {
		return nil, err
	}

	// rentalID is stored as given; eligibility rests on any qualifying rental of the car.
	rented, err := s.rentalRepo.HasRentalForCar(ctx, userID, carID, reviewableStatuses)
	if err != nil {
		return nil, err
	}
	if !rented {
		return nil, domain.Forbidden("you can only review cars you have rented")
	}

	now := s.now().UTC()
	review := &domain.Review{
		UserID:     userID,
		CarID:      carID,
		RentalID:   rentalID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
		IsApproved: true,
		ReviewDate: now,
		UpdatedAt:  now,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		logger.ExitMethodWithError("reviewService.Create", err)
		return nil, err
	}

	s.refreshRating(ctx, carID)

	logger.ExitMethod("reviewService.Create", "reviewID", review.ID)
	return review, nil
}

// refreshRating recomputes the denormalised car rating. Failures are logged only.
func (s *reviewService) refreshRating(ctx context.Context, carID int64) {
	avg, err := s.reviewRepo.AverageRating(ctx, carID)
	if err != nil {
		logger.Warn("Failed to compute car rating", "carID", carID, "error", err)
		return
	}
	if err := s.carRepo.UpdateRating(ctx, carID, avg); err != nil {
		logger.Warn("Failed to update car rating", "carID", carID, "error", err)
	}
}

func (s *reviewService) ListForCar(ctx context.Context, carID int64) ([]domain.Review, error) {
	return s.reviewRepo.ListByCar(ctx, carID, true)
}

func (s *reviewService) ListForUser(ctx context.Context, userID int64) ([]domain.Review, error) {
	return s.reviewRepo.ListByUser(ctx, userID)
}

func (s *reviewService) ownedReview(ctx context.Context, reviewID, userID int64) (*domain.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, domain.Forbidden("you can only manage your own reviews")
	}
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, reviewID, userID int64, rating int, comment string) (*domain.Review, error) {
	if !domain.ValidRating(rating) {
		return nil, domain.BadRequest("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}
	review, err := s.ownedReview(ctx, reviewID, userID)
	if err != nil {
		return nil, err
	}
	review.Rating = rating
	review.Comment = strings.TrimSpace(comment)
	review.UpdatedAt = s.now().UTC()
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	s.refreshRating(ctx, review.CarID)
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, reviewID, userID int64) error {
	review, err := s.ownedReview(ctx, reviewID, userID)
	if err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return err
	}
	s.refreshRating(ctx, review.CarID)
	return nil
}

func (s *reviewService) Approve(ctx context.Context, reviewID int64) (*domain.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	review.IsApproved = true
	review.UpdatedAt = s.now().UTC()
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	s.refreshRating(ctx, review.CarID)
	return review, nil
}

func (s *reviewService) ListPending(ctx context.Context) ([]domain.Review, error) {
	return s.reviewRepo.ListPending(ctx)
}

func (s *reviewService) CarAverageRating(ctx context.Context, carID int64) (float64, error) {
	return s.reviewRepo.AverageRating(ctx, carID)
}
