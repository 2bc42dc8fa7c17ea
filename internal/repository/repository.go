package repository

import (
	"context"
	"time"

	"karhubty-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	SetActive(ctx context.Context, id int64, active bool) error
	List(ctx context.Context) ([]domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	GetByID(ctx context.Context, id int64) (*domain.Agent, error)
	GetByEmail(ctx context.Context, email string) (*domain.Agent, error)
	Update(ctx context.Context, agent *domain.Agent) error
	UpdateStatus(ctx context.Context, id int64, status domain.AgentStatus, approvalDate *time.Time) error
	List(ctx context.Context, filter domain.AgentFilter) ([]domain.Agent, error)
}

type CarRepository interface {
	Create(ctx context.Context, car *domain.Car) error
	GetByID(ctx context.Context, id int64) (*domain.Car, error)
	GetByLicensePlate(ctx context.Context, plate string) (*domain.Car, error)
	Update(ctx context.Context, car *domain.Car) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.CarFilter) ([]domain.Car, error)
	ListByAgent(ctx context.Context, agentID int64) ([]domain.Car, error)
	ListFeatured(ctx context.Context, limit int) ([]domain.Car, error)
	SetAvailability(ctx context.Context, id int64, available bool) error
	UpdateRating(ctx context.Context, id int64, rating float64) error
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int64) (*domain.Rental, error)
	Update(ctx context.Context, rental *domain.Rental) error
	List(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error)
	// ListActiveForCar returns pending or approved rentals of carID whose
	// period intersects [from, to] inclusively.
	ListActiveForCar(ctx context.Context, carID int64, from, to time.Time) ([]domain.Rental, error)
	// ListActiveForUser is ListActiveForCar keyed by renter.
	ListActiveForUser(ctx context.Context, userID int64, from, to time.Time) ([]domain.Rental, error)
	ListApprovedEndedBefore(ctx context.Context, date time.Time) ([]domain.Rental, error)
	ListPendingStartedBefore(ctx context.Context, date time.Time) ([]domain.Rental, error)
	HasRentalForCar(ctx context.Context, userID, carID int64, statuses []domain.RentalStatus) (bool, error)
	Stats(ctx context.Context, agentID *int64) (*domain.RentalStats, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.AgentDocument) error
	GetByID(ctx context.Context, id int64) (*domain.AgentDocument, error)
	Update(ctx context.Context, doc *domain.AgentDocument) error
	Delete(ctx context.Context, id int64) error
	ListByAgent(ctx context.Context, agentID int64) ([]domain.AgentDocument, error)
	ListByAgentAndType(ctx context.Context, agentID int64, documentType string) ([]domain.AgentDocument, error)
	ListByStatus(ctx context.Context, status domain.DocumentStatus) ([]domain.AgentDocument, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id int64) error
	ListByCar(ctx context.Context, carID int64, approvedOnly bool) ([]domain.Review, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Review, error)
	ListPending(ctx context.Context) ([]domain.Review, error)
	AverageRating(ctx context.Context, carID int64) (float64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, recipient domain.Recipient, unreadOnly bool) ([]domain.Notification, error)
	CountUnread(ctx context.Context, recipient domain.Recipient) (int64, error)
	MarkAsRead(ctx context.Context, id int64, recipient domain.Recipient) error
	MarkAllAsRead(ctx context.Context, recipient domain.Recipient) (int64, error)
	Delete(ctx context.Context, id int64, recipient domain.Recipient) error
}

type StatsRepository interface {
	PlatformStats(ctx context.Context) (*domain.PlatformStats, error)
	RevenueByAgent(ctx context.Context) ([]domain.AgentRevenue, error)
	CarEarningsByAgent(ctx context.Context, agentID int64, limit int) ([]domain.CarEarnings, error)
}

// TxRepositories are repositories bound to one open transaction.
type TxRepositories struct {
	Rentals RentalRepository
	Cars    CarRepository
	Agents  AgentRepository
}

// Transactor runs fn inside a transaction, committing when fn returns nil
// and rolling back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos TxRepositories) error) error
}
