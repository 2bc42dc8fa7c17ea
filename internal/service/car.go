package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository"
	"karhubty-backend/internal/storage"
)

var carImageMimeTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

type carService struct {
	carRepo   repository.CarRepository
	agentRepo repository.AgentRepository
	storage   storage.StorageInterface
}

func NewCarService(carRepo repository.CarRepository, agentRepo repository.AgentRepository, store storage.StorageInterface) CarService {
	return &carService{
		carRepo:   carRepo,
		agentRepo: agentRepo,
		storage:   store,
	}
}

func (s *carService) AddCar(ctx context.Context, agentID int64, car *domain.Car, images []domain.Upload) (*domain.Car, error) {
	logger.EnterMethod("carService.AddCar", "agentID", agentID, "licensePlate", car.LicensePlate)

	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if agent.AccountStatus != domain.AgentStatusApproved {
		return nil, domain.Forbidden("your agency must be approved before listing cars")
	}

	if err := validateCar(car); err != nil {
		return nil, err
	}
	if len(images) > domain.MaxCarImages {
		return nil, domain.BadRequest("a car can have at most %d images", domain.MaxCarImages)
	}
	for _, img := range images {
		if err := validateCarImage(img); err != nil {
			return nil, err
		}
	}

	car.LicensePlate = strings.ToUpper(strings.TrimSpace(car.LicensePlate))
	if _, err := s.carRepo.GetByLicensePlate(ctx, car.LicensePlate); err == nil {
		return nil, domain.ErrLicensePlateTaken
	} else if !errors.Is(err, domain.ErrCarNotFound) {
		return nil, err
	}

	paths, err := s.storeImages(ctx, agentID, images)
	if err != nil {
		return nil, err
	}

	car.ID = 0
	car.AgentID = agentID
	car.Images = paths
	car.IsAvailable = true
	car.AverageRating = 0
	if err := s.carRepo.Create(ctx, car); err != nil {
		s.removeImages(ctx, paths)
		logger.ExitMethodWithError("carService.AddCar", err)
		return nil, err
	}

	logger.ExitMethod("carService.AddCar", "carID", car.ID)
	return car, nil
}

func validateCar(car *domain.Car) error {
	switch {
	case strings.TrimSpace(car.Brand) == "" || strings.TrimSpace(car.Model) == "":
		return domain.BadRequest("brand and model are required")
	case strings.TrimSpace(car.LicensePlate) == "":
		return domain.BadRequest("license plate is required")
	case car.PricePerDay <= 0:
		return domain.BadRequest("price per day must be positive")
	case car.GuaranteePrice < 0:
		return domain.BadRequest("guarantee price cannot be negative")
	case car.Category != "" && !slices.Contains(domain.CarCategories, car.Category):
		return domain.BadRequest("unknown category %q", car.Category)
	case car.Transmission != "" && !slices.Contains(domain.CarTransmissions, car.Transmission):
		return domain.BadRequest("unknown transmission %q", car.Transmission)
	case car.FuelType != "" && !slices.Contains(domain.CarFuelTypes, car.FuelType):
		return domain.BadRequest("unknown fuel type %q", car.FuelType)
	}
	return nil
}

func validateCarImage(img domain.Upload) error {
	if !slices.Contains(carImageMimeTypes, strings.ToLower(img.ContentType)) {
		return domain.BadRequest("invalid image type %q, only JPEG, PNG and WEBP are allowed", img.ContentType)
	}
	if int64(len(img.Data)) > domain.MaxDocumentSize || img.Size > domain.MaxDocumentSize {
		return domain.BadRequest("image %s exceeds the 5MB limit", img.FileName)
	}
	return nil
}

func (s *carService) storeImages(ctx context.Context, agentID int64, images []domain.Upload) ([]string, error) {
	paths := make([]string, 0, len(images))
	for _, img := range images {
		key := storage.CarImageKey(agentID, img.FileName)
		if err := s.storage.SaveFile(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), strings.ToLower(img.ContentType)); err != nil {
			s.removeImages(ctx, paths)
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		paths = append(paths, key)
	}
	return paths, nil
}

func (s *carService) removeImages(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := s.storage.DeleteFile(ctx, p); err != nil {
			logger.Warn("Failed to delete car image", "path", p, "error", err)
		}
	}
}

func (s *carService) GetCar(ctx context.Context, carID int64) (*domain.Car, error) {
	return s.carRepo.GetByID(ctx, carID)
}

func (s *carService) ListCars(ctx context.Context, filter domain.CarFilter) ([]domain.Car, error) {
	filter.IncludeUnavailable = false
	return s.carRepo.List(ctx, filter)
}

func (s *carService) ListByAgent(ctx context.Context, agentID int64) ([]domain.Car, error) {
	return s.carRepo.ListByAgent(ctx, agentID)
}

func (s *carService) Featured(ctx context.Context) ([]domain.Car, error) {
	return s.carRepo.ListFeatured(ctx, domain.FeaturedCarsLimit)
}

func (s *carService) ownedCar(ctx context.Context, agentID, carID int64) (*domain.Car, error) {
	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.AgentID != agentID {
		return nil, domain.Forbidden("you can only manage your own cars")
	}
	return car, nil
}

func (s *carService) UpdateCar(ctx context.Context, agentID, carID int64, update domain.CarUpdate) (*domain.Car, error) {
	car, err := s.ownedCar(ctx, agentID, carID)
	if err != nil {
		return nil, err
	}
	update.Apply(car)
	if err := validateCar(car); err != nil {
		return nil, err
	}
	if err := s.carRepo.Update(ctx, car); err != nil {
		return nil, err
	}
	return car, nil
}

func (s *carService) SetAvailability(ctx context.Context, agentID, carID int64, available bool) (*domain.Car, error) {
	car, err := s.ownedCar(ctx, agentID, carID)
	if err != nil {
		return nil, err
	}
	if err := s.carRepo.SetAvailability(ctx, carID, available); err != nil {
		return nil, err
	}
	car.IsAvailable = available
	return car, nil
}

func (s *carService) DeleteCar(ctx context.Context, agentID, carID int64) error {
	car, err := s.ownedCar(ctx, agentID, carID)
	if err != nil {
		return err
	}
	return s.deleteCar(ctx, car)
}

func (s *carService) AdminListCars(ctx context.Context) ([]domain.Car, error) {
	return s.carRepo.List(ctx, domain.CarFilter{IncludeUnavailable: true})
}

func (s *carService) AdminDeleteCar(ctx context.Context, carID int64) error {
	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return err
	}
	return s.deleteCar(ctx, car)
}

func (s *carService) deleteCar(ctx context.Context, car *domain.Car) error {
	if err := s.carRepo.Delete(ctx, car.ID); err != nil {
		return err
	}
	s.removeImages(ctx, car.Images)
	logger.Info("Car deleted", "carID", car.ID, "agentID", car.AgentID)
	return nil
}
