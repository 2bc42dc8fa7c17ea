package service

import (
	"context"
	"time"

	"karhubty-backend/internal/domain"
)

type AuthService interface {
	RegisterUser(ctx context.Context, req RegisterUserInput) (*domain.User, error)
	RegisterAgent(ctx context.Context, req RegisterAgentInput) (*domain.Agent, error)
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, email, password string) (string, domain.Account, error) // token, account
}

type UserService interface {
	GetUserProfile(ctx context.Context, userID int64) (*domain.User, error)
	UpdateUserProfile(ctx context.Context, userID int64, update domain.UserProfileUpdate) (*domain.User, error)
	GetAgentProfile(ctx context.Context, agentID int64) (*domain.Agent, error)
	UpdateAgentProfile(ctx context.Context, agentID int64, update domain.AgentProfileUpdate) (*domain.Agent, error)
}

type CarService interface {
	AddCar(ctx context.Context, agentID int64, car *domain.Car, images []domain.Upload) (*domain.Car, error)
	GetCar(ctx context.Context, carID int64) (*domain.Car, error)
	ListCars(ctx context.Context, filter domain.CarFilter) ([]domain.Car, error)
	ListByAgent(ctx context.Context, agentID int64) ([]domain.Car, error)
	Featured(ctx context.Context) ([]domain.Car, error)
	UpdateCar(ctx context.Context, agentID, carID int64, update domain.CarUpdate) (*domain.Car, error)
	SetAvailability(ctx context.Context, agentID, carID int64, available bool) (*domain.Car, error)
	DeleteCar(ctx context.Context, agentID, carID int64) error
	AdminListCars(ctx context.Context) ([]domain.Car, error)
	AdminDeleteCar(ctx context.Context, carID int64) error
}

// RentalService is the booking engine: overlap detection, pricing and the
// rental state machine with its car availability side effects.
type RentalService interface {
	Create(ctx context.Context, userID, carID int64, startDate, endDate time.Time) (*domain.Rental, error)
	Approve(ctx context.Context, rentalID, agentID int64) (*domain.Rental, error)
	Reject(ctx context.Context, rentalID, agentID int64) (*domain.Rental, error)
	Cancel(ctx context.Context, rentalID, userID int64) (*domain.Rental, error)
	Complete(ctx context.Context, rentalID int64) (*domain.Rental, error)
	CalculatePrice(ctx context.Context, carID int64, startDate, endDate time.Time) (*domain.PriceQuote, error)
	CheckUserOverlap(ctx context.Context, userID int64, startDate, endDate time.Time) (bool, *domain.Rental, error)
	GetStats(ctx context.Context, agentID *int64) (*domain.RentalStats, error)
	Get(ctx context.Context, rentalID int64, caller domain.Account) (*domain.Rental, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Rental, error)
	ListByAgent(ctx context.Context, agentID int64, status domain.RentalStatus) ([]domain.Rental, error)
	ListAll(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error)

	// Batch operations driven by the scheduler. Both return how many rentals changed.
	CompleteEndedRentals(ctx context.Context, now time.Time) (int, error)
	ExpireStalePending(ctx context.Context, now time.Time) (int, error)
}

// DocumentService is the agent onboarding workflow.
type DocumentService interface {
	UploadDocument(ctx context.Context, agentID int64, documentType string, file domain.Upload) (*domain.AgentDocument, error)
	VerifyDocument(ctx context.Context, documentID, adminID int64, approved bool, reason string) (*domain.AgentDocument, error)
	ApproveAgentAfterDocuments(ctx context.Context, agentID int64) (bool, error)
	SubmitForReview(ctx context.Context, agentID int64) error
	ListAgentDocuments(ctx context.Context, agentID int64) ([]domain.AgentDocument, error)
	ListDocumentsByType(ctx context.Context, agentID int64, documentType string) ([]domain.AgentDocument, error)
	ListPendingDocuments(ctx context.Context) ([]domain.AgentDocument, error)
	DeleteDocument(ctx context.Context, documentID, agentID int64) error
}

type ReviewService interface {
	Create(ctx context.Context, userID, carID, rentalID int64, rating int, comment string) (*domain.Review, error)
	ListForCar(ctx context.Context, carID int64) ([]domain.Review, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.Review, error)
	Update(ctx context.Context, reviewID, userID int64, rating int, comment string) (*domain.Review, error)
	Delete(ctx context.Context, reviewID, userID int64) error
	Approve(ctx context.Context, reviewID int64) (*domain.Review, error)
	ListPending(ctx context.Context) ([]domain.Review, error)
	CarAverageRating(ctx context.Context, carID int64) (float64, error)
}

type NotificationService interface {
	List(ctx context.Context, recipient domain.Recipient) ([]domain.Notification, error)
	ListUnread(ctx context.Context, recipient domain.Recipient) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, recipient domain.Recipient) (int64, error)
	MarkAsRead(ctx context.Context, notificationID int64, recipient domain.Recipient) error
	MarkAllAsRead(ctx context.Context, recipient domain.Recipient) (int64, error)
	Delete(ctx context.Context, notificationID int64, recipient domain.Recipient) error
}

type AdminService interface {
	ListPendingAgents(ctx context.Context) ([]domain.Agent, error)
	ListAgents(ctx context.Context, filter domain.AgentFilter) ([]domain.Agent, error)
	ApproveAgent(ctx context.Context, agentID int64) (*domain.Agent, error)
	RejectAgent(ctx context.Context, agentID int64, reason string) (*domain.Agent, error)
	SuspendAgent(ctx context.Context, agentID int64, reason string) (*domain.Agent, error)
	ActivateAgent(ctx context.Context, agentID int64) (*domain.Agent, error)
	RequestDocuments(ctx context.Context, agentID int64, required []string, message string) (*domain.Agent, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	SetUserActive(ctx context.Context, userID int64, active bool) error
	PlatformStats(ctx context.Context) (*domain.PlatformStats, error)
	RevenueByAgent(ctx context.Context) ([]domain.AgentRevenue, error)
	AgentDashboard(ctx context.Context, agentID int64) (*domain.AgentDashboard, error)
}

type RegisterUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Address   string
	City      string
}

type RegisterAgentInput struct {
	Email         string
	Password      string
	FirstName     string
	LastName      string
	AgencyName    string
	AgencyAddress string
	City          string
	Phone         string
}
