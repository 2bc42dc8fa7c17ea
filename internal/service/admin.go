package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/events"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository"
)

const (
	dashboardRecentRentals = 5
	dashboardTopCars       = 5
)

type adminService struct {
	agentRepo  repository.AgentRepository
	userRepo   repository.UserRepository
	carRepo    repository.CarRepository
	rentalRepo repository.RentalRepository
	statsRepo  repository.StatsRepository
	publisher  events.Publisher
	now        func() time.Time
}

func NewAdminService(
	agentRepo repository.AgentRepository,
	userRepo repository.UserRepository,
	carRepo repository.CarRepository,
	rentalRepo repository.RentalRepository,
	statsRepo repository.StatsRepository,
	publisher events.Publisher,
) AdminService {
	return &adminService{
		agentRepo:  agentRepo,
		userRepo:   userRepo,
		carRepo:    carRepo,
		rentalRepo: rentalRepo,
		statsRepo:  statsRepo,
		publisher:  publisher,
		now:        time.Now,
	}
}

func (s *adminService) ListPendingAgents(ctx context.Context) ([]domain.Agent, error) {
	return s.agentRepo.List(ctx, domain.AgentFilter{Status: domain.AgentStatusPending})
}

func (s *adminService) ListAgents(ctx context.Context, filter domain.AgentFilter) ([]domain.Agent, error) {
	return s.agentRepo.List(ctx, filter)
}

// awaitingDecision reports whether an admin may still approve or reject.
func awaitingDecision(status domain.AgentStatus) bool {
	return status == domain.AgentStatusPending || status == domain.AgentStatusInVerification
}

func (s *adminService) ApproveAgent(ctx context.Context, agentID int64) (*domain.Agent, error) {
	logger.EnterMethod("adminService.ApproveAgent", "agentID", agentID)

	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if !awaitingDecision(agent.AccountStatus) {
		return nil, domain.BadRequest("only pending agents can be approved")
	}

	now := s.now().UTC()
	if err := s.agentRepo.UpdateStatus(ctx, agentID, domain.AgentStatusApproved, &now); err != nil {
		logger.ExitMethodWithError("adminService.ApproveAgent", err)
		return nil, err
	}
	agent.AccountStatus = domain.AgentStatusApproved
	agent.ApprovalDate = &now

	s.notifyAgent(ctx, agent, domain.EventAgentApproved, domain.NotificationAgentApproved,
		"Account Approved", "Your agency has been approved. You can now list cars")

	logger.ExitMethod("adminService.ApproveAgent", "agentID", agentID)
	return agent, nil
}

func (s *adminService) RejectAgent(ctx context.Context, agentID int64, reason string) (*domain.Agent, error) {
	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if !awaitingDecision(agent.AccountStatus) {
		return nil, domain.BadRequest("only pending agents can be rejected")
	}
	if err := s.agentRepo.UpdateStatus(ctx, agentID, domain.AgentStatusRejected, agent.ApprovalDate); err != nil {
		return nil, err
	}
	agent.AccountStatus = domain.AgentStatusRejected

	message := "Your agency registration has been rejected"
	if reason != "" {
		message += ". Reason: " + reason
	}
	s.notifyAgent(ctx, agent, domain.EventAgentRejected, domain.NotificationAgentRejected, "Account Rejected", message)
	return agent, nil
}

func (s *adminService) SuspendAgent(ctx context.Context, agentID int64, reason string) (*domain.Agent, error) {
	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if err := s.agentRepo.UpdateStatus(ctx, agentID, domain.AgentStatusSuspended, agent.ApprovalDate); err != nil {
		return nil, err
	}
	agent.AccountStatus = domain.AgentStatusSuspended

	message := "Your agency account has been suspended"
	if reason != "" {
		message += ". Reason: " + reason
	}
	s.notifyAgent(ctx, agent, domain.EventAgentSuspended, domain.NotificationAgentSuspended, "Account Suspended", message)
	return agent, nil
}

func (s *adminService) ActivateAgent(ctx context.Context, agentID int64) (*domain.Agent, error) {
	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if agent.AccountStatus == domain.AgentStatusRejected {
		return nil, domain.BadRequest("cannot activate a rejected agent")
	}

	approvedAt := agent.ApprovalDate
	if approvedAt == nil {
		now := s.now().UTC()
		approvedAt = &now
	}
	if err := s.agentRepo.UpdateStatus(ctx, agentID, domain.AgentStatusApproved, approvedAt); err != nil {
		return nil, err
	}
	agent.AccountStatus = domain.AgentStatusApproved
	agent.ApprovalDate = approvedAt
	return agent, nil
}

// RequestDocuments asks a pending agent for onboarding documents and moves it
// into verification.
func (s *adminService) RequestDocuments(ctx context.Context, agentID int64, required []string, message string) (*domain.Agent, error) {
	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if !awaitingDecision(agent.AccountStatus) {
		return nil, domain.BadRequest("documents can only be requested from pending agents")
	}
	if len(required) == 0 {
		return nil, domain.BadRequest("at least one required document must be listed")
	}

	if agent.AccountStatus == domain.AgentStatusPending {
		if err := s.agentRepo.UpdateStatus(ctx, agentID, domain.AgentStatusInVerification, nil); err != nil {
			return nil, err
		}
		agent.AccountStatus = domain.AgentStatusInVerification
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Hello %s,\n\nTo complete your registration please upload the following documents:\n", agent.AgencyName)
	for _, doc := range required {
		fmt.Fprintf(&body, "  - %s\n", doc)
	}
	if message != "" {
		fmt.Fprintf(&body, "\n%s", message)
	}

	evt := newEvent(domain.EventDocumentsRequested, domain.NotificationDocumentsRequested,
		domain.Recipient{ID: agentID, Type: domain.RecipientAgent},
		"Documents Required",
		"Please upload: "+strings.Join(required, ", "))
	evt = withEntity(evt, "agent", agentID)
	evt = withEmail(evt, agent.Email, "KarHubty - Documents Required", body.String())
	s.publisher.Publish(ctx, evt)

	return agent, nil
}

func (s *adminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *adminService) SetUserActive(ctx context.Context, userID int64, active bool) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == domain.RoleSuperAdmin && !active {
		return domain.BadRequest("superadmin accounts cannot be deactivated")
	}
	return s.userRepo.SetActive(ctx, userID, active)
}

func (s *adminService) PlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	return s.statsRepo.PlatformStats(ctx)
}

func (s *adminService) RevenueByAgent(ctx context.Context) ([]domain.AgentRevenue, error) {
	rows, err := s.statsRepo.RevenueByAgent(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(rows, func(a, b domain.AgentRevenue) int {
		return cmp.Compare(b.TotalEarnings, a.TotalEarnings)
	})
	return rows, nil
}

func (s *adminService) AgentDashboard(ctx context.Context, agentID int64) (*domain.AgentDashboard, error) {
	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	cars, err := s.carRepo.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	stats, err := s.rentalRepo.Stats(ctx, &agentID)
	if err != nil {
		return nil, err
	}
	rentals, err := s.rentalRepo.List(ctx, domain.RentalFilter{AgentID: agentID})
	if err != nil {
		return nil, err
	}
	topCars, err := s.statsRepo.CarEarningsByAgent(ctx, agentID, dashboardTopCars)
	if err != nil {
		return nil, err
	}

	dash := &domain.AgentDashboard{
		Agent:     agent,
		TotalCars: int64(len(cars)),
		Rentals:   *stats,
		TopCars:   topCars,
	}
	for _, c := range cars {
		if c.IsAvailable {
			dash.AvailableCars++
		}
	}
	for _, r := range rentals {
		if r.Status == domain.RentalStatusApproved {
			dash.PendingRevenue += r.TotalPrice
		}
	}
	dash.RecentRentals = rentals[:min(len(rentals), dashboardRecentRentals)]

	return dash, nil
}

func (s *adminService) notifyAgent(ctx context.Context, agent *domain.Agent, et domain.EventType, nt domain.NotificationType, title, message string) {
	evt := newEvent(et, nt, domain.Recipient{ID: agent.ID, Type: domain.RecipientAgent}, title, message)
	evt = withEntity(evt, "agent", agent.ID)
	evt = withEmail(evt, agent.Email, "KarHubty - "+title, fmt.Sprintf("Hello %s,\n\n%s.", agent.AgencyName, message))
	s.publisher.Publish(ctx, evt)
}
