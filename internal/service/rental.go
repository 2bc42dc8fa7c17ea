package service

import (
	"context"
	"fmt"
	"time"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/events"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository"
	"karhubty-backend/internal/utils"
)

type rentalService struct {
	rentalRepo repository.RentalRepository
	carRepo    repository.CarRepository
	userRepo   repository.UserRepository
	agentRepo  repository.AgentRepository
	tx         repository.Transactor
	publisher  events.Publisher

	// sameDayTurnover lets a booking start on the date another one ends.
	sameDayTurnover bool
	now             func() time.Time
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	carRepo repository.CarRepository,
	userRepo repository.UserRepository,
	agentRepo repository.AgentRepository,
	tx repository.Transactor,
	publisher events.Publisher,
	sameDayTurnover bool,
) RentalService {
	return &rentalService{
		rentalRepo:      rentalRepo,
		carRepo:         carRepo,
		userRepo:        userRepo,
		agentRepo:       agentRepo,
		tx:              tx,
		publisher:       publisher,
		sameDayTurnover: sameDayTurnover,
		now:             time.Now,
	}
}

func (s *rentalService) today() time.Time {
	return utils.TruncateToDate(s.now())
}

func (s *rentalService) overlaps(a, b domain.DateRange) bool {
	if s.sameDayTurnover {
		return a.OverlapsStrict(b)
	}
	return a.Overlaps(b)
}

// firstConflict returns the first candidate whose period collides with period.
// The repository returns an inclusive superset, the policy is applied here.
func (s *rentalService) firstConflict(candidates []domain.Rental, period domain.DateRange) *domain.Rental {
	for i := range candidates {
		if candidates[i].Status.IsActive() && s.overlaps(candidates[i].Period(), period) {
			return &candidates[i]
		}
	}
	return nil
}

func (s *rentalService) Create(ctx context.Context, userID, carID int64, startDate, endDate time.Time) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.Create", "userID", userID, "carID", carID)

	start := utils.TruncateToDate(startDate)
	end := utils.TruncateToDate(endDate)

	if start.Before(s.today()) {
		return nil, domain.BadRequest("start date cannot be in the past")
	}
	if !end.After(start) {
		return nil, domain.BadRequest("end date must be after start date")
	}

	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		logger.ExitMethodWithError("rentalService.Create", err, "reason", "car lookup failed")
		return nil, err
	}
	if !car.IsAvailable {
		return nil, domain.BadRequest("car is not available")
	}

	period := domain.DateRange{Start: start, End: end}

	carRentals, err := s.rentalRepo.ListActiveForCar(ctx, carID, start, end)
	if err != nil {
		return nil, err
	}
	if conflict := s.firstConflict(carRentals, period); conflict != nil {
		logger.Info("Booking rejected, car already booked", "carID", carID, "conflictingRentalID", conflict.ID)
		return nil, domain.ErrCarAlreadyBooked
	}

	userRentals, err := s.rentalRepo.ListActiveForUser(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	if conflict := s.firstConflict(userRentals, period); conflict != nil {
		logger.Info("Booking rejected, user already has a rental", "userID", userID, "conflictingRentalID", conflict.ID)
		return nil, domain.ErrUserAlreadyBooked
	}

	quote, err := utils.CalculateRentalCost(start, end, car)
	if err != nil {
		return nil, domain.BadRequest("%s", err.Error())
	}

	rental := &domain.Rental{
		UserID:          userID,
		CarID:           carID,
		AgentID:         car.AgentID,
		StartDate:       start,
		EndDate:         end,
		TotalPrice:      quote.TotalPrice,
		GuaranteeAmount: quote.GuaranteeAmount,
		Status:          domain.RentalStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		RequestDate:     s.now().UTC(),
	}

	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		logger.ExitMethodWithError("rentalService.Create", err)
		return nil, err
	}

	s.notifyAgent(ctx, rental, car, domain.EventRentalRequested, domain.NotificationRentalRequest,
		"New Rental Request", "requested to rent")

	logger.ExitMethod("rentalService.Create", "rentalID", rental.ID, "total", rental.TotalPrice.String())
	return rental, nil
}

func (s *rentalService) Approve(ctx context.Context, rentalID, agentID int64) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.Approve", "rentalID", rentalID, "agentID", agentID)

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.AgentID != agentID {
		return nil, domain.Forbidden("you can only approve rentals for your own cars")
	}
	if !rental.Status.CanTransitionTo(domain.RentalStatusApproved) {
		return nil, domain.BadRequest("only pending rentals can be approved")
	}

	car, err := s.carRepo.GetByID(ctx, rental.CarID)
	if err != nil {
		return nil, err
	}
	if !car.IsAvailable {
		return nil, domain.BadRequest("car is no longer available")
	}

	now := s.now().UTC()
	err = s.tx.WithinTx(ctx, func(repos repository.TxRepositories) error {
		rental.Status = domain.RentalStatusApproved
		rental.ApprovalDate = &now
		if err := repos.Rentals.Update(ctx, rental); err != nil {
			return err
		}
		return repos.Cars.SetAvailability(ctx, rental.CarID, false)
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.Approve", err)
		return nil, err
	}

	s.notifyUser(ctx, rental, car, domain.EventRentalApproved, domain.NotificationRentalApproved,
		"Rental Approved", "has been approved")

	logger.ExitMethod("rentalService.Approve", "rentalID", rentalID)
	return rental, nil
}

func (s *rentalService) Reject(ctx context.Context, rentalID, agentID int64) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.Reject", "rentalID", rentalID, "agentID", agentID)

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.AgentID != agentID {
		return nil, domain.Forbidden("you can only reject rentals for your own cars")
	}
	if !rental.Status.CanTransitionTo(domain.RentalStatusRejected) {
		return nil, domain.BadRequest("only pending rentals can be rejected")
	}

	rental.Status = domain.RentalStatusRejected
	if err := s.rentalRepo.Update(ctx, rental); err != nil {
		logger.ExitMethodWithError("rentalService.Reject", err)
		return nil, err
	}

	car, _ := s.carRepo.GetByID(ctx, rental.CarID)
	s.notifyUser(ctx, rental, car, domain.EventRentalRejected, domain.NotificationRentalRejected,
		"Rental Rejected", "has been rejected")

	logger.ExitMethod("rentalService.Reject", "rentalID", rentalID)
	return rental, nil
}

func (s *rentalService) Cancel(ctx context.Context, rentalID, userID int64) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.Cancel", "rentalID", rentalID, "userID", userID)

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.UserID != userID {
		return nil, domain.Forbidden("you can only cancel your own rentals")
	}
	if !rental.Status.CanTransitionTo(domain.RentalStatusCancelled) {
		return nil, domain.BadRequest("cannot cancel a %s rental", rental.Status)
	}
	if !s.today().Before(rental.StartDate) {
		return nil, domain.BadRequest("cannot cancel a rental that has already started")
	}

	wasApproved := rental.Status == domain.RentalStatusApproved
	err = s.tx.WithinTx(ctx, func(repos repository.TxRepositories) error {
		rental.Status = domain.RentalStatusCancelled
		if err := repos.Rentals.Update(ctx, rental); err != nil {
			return err
		}
		if wasApproved {
			return repos.Cars.SetAvailability(ctx, rental.CarID, true)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.Cancel", err)
		return nil, err
	}

	car, _ := s.carRepo.GetByID(ctx, rental.CarID)
	s.notifyAgent(ctx, rental, car, domain.EventRentalCancelled, domain.NotificationRentalCancelled,
		"Rental Cancelled", "cancelled the rental of")

	logger.ExitMethod("rentalService.Cancel", "rentalID", rentalID)
	return rental, nil
}

func (s *rentalService) Complete(ctx context.Context, rentalID int64) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.Complete", "rentalID", rentalID)

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if err := s.complete(ctx, rental, s.now()); err != nil {
		logger.ExitMethodWithError("rentalService.Complete", err)
		return nil, err
	}

	logger.ExitMethod("rentalService.Complete", "rentalID", rentalID)
	return rental, nil
}

func (s *rentalService) complete(ctx context.Context, rental *domain.Rental, now time.Time) error {
	if !rental.Status.CanTransitionTo(domain.RentalStatusCompleted) {
		return domain.BadRequest("only approved rentals can be completed")
	}
	if utils.TruncateToDate(now).Before(rental.EndDate) {
		return domain.BadRequest("rental has not ended yet")
	}

	completedAt := now.UTC()
	err := s.tx.WithinTx(ctx, func(repos repository.TxRepositories) error {
		rental.Status = domain.RentalStatusCompleted
		rental.CompletionDate = &completedAt
		rental.PaymentStatus = domain.PaymentStatusPaid
		if err := repos.Rentals.Update(ctx, rental); err != nil {
			return err
		}
		return repos.Cars.SetAvailability(ctx, rental.CarID, true)
	})
	if err != nil {
		return err
	}

	car, _ := s.carRepo.GetByID(ctx, rental.CarID)
	s.notifyUser(ctx, rental, car, domain.EventRentalCompleted, domain.NotificationRentalCompleted,
		"Rental Completed", "has been completed. Thank you for renting with us")
	return nil
}

func (s *rentalService) CalculatePrice(ctx context.Context, carID int64, startDate, endDate time.Time) (*domain.PriceQuote, error) {
	start := utils.TruncateToDate(startDate)
	end := utils.TruncateToDate(endDate)
	if !end.After(start) {
		return nil, domain.BadRequest("end date must be after start date")
	}

	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}

	quote, err := utils.CalculateRentalCost(start, end, car)
	if err != nil {
		return nil, domain.BadRequest("%s", err.Error())
	}
	return &quote, nil
}

func (s *rentalService) CheckUserOverlap(ctx context.Context, userID int64, startDate, endDate time.Time) (bool, *domain.Rental, error) {
	start := utils.TruncateToDate(startDate)
	end := utils.TruncateToDate(endDate)
	if end.Before(start) {
		return false, nil, domain.BadRequest("end date must not be before start date")
	}

	rentals, err := s.rentalRepo.ListActiveForUser(ctx, userID, start, end)
	if err != nil {
		return false, nil, err
	}
	conflict := s.firstConflict(rentals, domain.DateRange{Start: start, End: end})
	return conflict != nil, conflict, nil
}

func (s *rentalService) GetStats(ctx context.Context, agentID *int64) (*domain.RentalStats, error) {
	return s.rentalRepo.Stats(ctx, agentID)
}

func (s *rentalService) Get(ctx context.Context, rentalID int64, caller domain.Account) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	switch {
	case caller.IsSuperAdmin():
	case caller.IsAgent() && rental.AgentID == caller.ID:
	case caller.IsUser() && rental.UserID == caller.ID:
	default:
		return nil, domain.Forbidden("you do not have access to this rental")
	}
	return rental, nil
}

func (s *rentalService) ListByUser(ctx context.Context, userID int64) ([]domain.Rental, error) {
	return s.rentalRepo.List(ctx, domain.RentalFilter{UserID: userID})
}

func (s *rentalService) ListByAgent(ctx context.Context, agentID int64, status domain.RentalStatus) ([]domain.Rental, error) {
	return s.rentalRepo.List(ctx, domain.RentalFilter{AgentID: agentID, Status: status})
}

func (s *rentalService) ListAll(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error) {
	return s.rentalRepo.List(ctx, filter)
}

func (s *rentalService) CompleteEndedRentals(ctx context.Context, now time.Time) (int, error) {
	// The end date is still a booked day, so only rentals that ended before
	// today are closed automatically.
	rentals, err := s.rentalRepo.ListApprovedEndedBefore(ctx, utils.TruncateToDate(now))
	if err != nil {
		return 0, err
	}

	completed := 0
	for i := range rentals {
		if err := s.complete(ctx, &rentals[i], now); err != nil {
			logger.Error("Failed to complete ended rental", "rentalID", rentals[i].ID, "error", err)
			continue
		}
		completed++
	}
	return completed, nil
}

func (s *rentalService) ExpireStalePending(ctx context.Context, now time.Time) (int, error) {
	rentals, err := s.rentalRepo.ListPendingStartedBefore(ctx, utils.TruncateToDate(now))
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range rentals {
		rental := &rentals[i]
		rental.Status = domain.RentalStatusRejected
		if err := s.rentalRepo.Update(ctx, rental); err != nil {
			logger.Error("Failed to expire pending rental", "rentalID", rental.ID, "error", err)
			continue
		}
		expired++

		car, _ := s.carRepo.GetByID(ctx, rental.CarID)
		s.notifyUser(ctx, rental, car, domain.EventRentalRejected, domain.NotificationRentalRejected,
			"Rental Request Expired", "expired before the agency answered it")
	}
	return expired, nil
}

// notifyAgent tells the owning agency about something the renter did.
func (s *rentalService) notifyAgent(ctx context.Context, rental *domain.Rental, car *domain.Car, et domain.EventType, nt domain.NotificationType, title, verb string) {
	renterName := "A customer"
	if user, err := s.userRepo.GetByID(ctx, rental.UserID); err == nil {
		renterName = user.FullName()
	}
	message := fmt.Sprintf("%s %s %s (%s)", renterName, verb, carLabel(car), rentalPeriod(rental))

	evt := newEvent(et, nt, domain.Recipient{ID: rental.AgentID, Type: domain.RecipientAgent}, title, message)
	evt = withEntity(evt, "rental", rental.ID)
	if agent, err := s.agentRepo.GetByID(ctx, rental.AgentID); err == nil {
		body := fmt.Sprintf("Hello %s,\n\n%s.\n\nTotal: %s", agent.AgencyName, message, rental.TotalPrice)
		evt = withEmail(evt, agent.Email, "KarHubty - "+title, body)
	}
	s.publisher.Publish(ctx, evt)
}

// notifyUser tells the renter about a change to their rental.
func (s *rentalService) notifyUser(ctx context.Context, rental *domain.Rental, car *domain.Car, et domain.EventType, nt domain.NotificationType, title, outcome string) {
	message := fmt.Sprintf("Your rental of %s (%s) %s", carLabel(car), rentalPeriod(rental), outcome)

	evt := newEvent(et, nt, domain.Recipient{ID: rental.UserID, Type: domain.RecipientUser}, title, message)
	evt = withEntity(evt, "rental", rental.ID)
	if user, err := s.userRepo.GetByID(ctx, rental.UserID); err == nil {
		evt = withEmail(evt, user.Email, "KarHubty - "+title, fmt.Sprintf("Hello %s,\n\n%s.", user.FirstName, message))
	}
	s.publisher.Publish(ctx, evt)
}
