package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/events"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository"
	"karhubty-backend/internal/security"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type authService struct {
	userRepo    repository.UserRepository
	agentRepo   repository.AgentRepository
	tokens      security.TokenManager
	publisher   events.Publisher
	frontendURL string
}

func NewAuthService(
	userRepo repository.UserRepository,
	agentRepo repository.AgentRepository,
	tokens security.TokenManager,
	publisher events.Publisher,
	frontendURL string,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		agentRepo:   agentRepo,
		tokens:      tokens,
		publisher:   publisher,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ensureEmailFree rejects an email already used by a user or an agent, so
// login can resolve an address to exactly one account.
func (s *authService) ensureEmailFree(ctx context.Context, email string) error {
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	if _, err := s.agentRepo.GetByEmail(ctx, email); err == nil {
		return domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrAgentNotFound) {
		return err
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", domain.BadRequest("password must be at least %d characters", minPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *authService) RegisterUser(ctx context.Context, req RegisterUserInput) (*domain.User, error) {
	logger.EnterMethod("authService.RegisterUser", "email", req.Email)

	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, domain.BadRequest("email is required")
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}
	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:             email,
		PasswordHash:      hashed,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Phone:             req.Phone,
		Address:           req.Address,
		City:              req.City,
		Role:              domain.RoleUser,
		IsActive:          true,
		EmailVerified:     false,
		VerificationToken: uuid.NewString(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		logger.ExitMethodWithError("authService.RegisterUser", err)
		return nil, err
	}

	link := fmt.Sprintf("%s/verify-email?token=%s", s.frontendURL, user.VerificationToken)
	evt := newEvent(domain.EventUserRegistered, "", domain.Recipient{ID: user.ID, Type: domain.RecipientUser}, "Welcome", "")
	evt = withEmail(evt, user.Email, "Welcome to KarHubty - Verify your email",
		fmt.Sprintf("Hello %s,\n\nThanks for signing up. Please verify your email address:\n\n%s", user.FirstName, link))
	s.publisher.Publish(ctx, evt)

	logger.ExitMethod("authService.RegisterUser", "userID", user.ID)
	return user, nil
}

func (s *authService) RegisterAgent(ctx context.Context, req RegisterAgentInput) (*domain.Agent, error) {
	logger.EnterMethod("authService.RegisterAgent", "email", req.Email, "agency", req.AgencyName)

	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, domain.BadRequest("email is required")
	}
	if strings.TrimSpace(req.AgencyName) == "" {
		return nil, domain.BadRequest("agency name is required")
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}
	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	agent := &domain.Agent{
		Email:         email,
		PasswordHash:  hashed,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		AgencyName:    req.AgencyName,
		AgencyAddress: req.AgencyAddress,
		City:          req.City,
		Phone:         req.Phone,
		AccountStatus: domain.AgentStatusPending,
		Role:          domain.RoleAgent,
	}
	if err := s.agentRepo.Create(ctx, agent); err != nil {
		logger.ExitMethodWithError("authService.RegisterAgent", err)
		return nil, err
	}

	evt := newEvent(domain.EventAgentRegistered, domain.NotificationAgentRegistered,
		domain.Recipient{Type: domain.RecipientSuperAdminBroadcast},
		"New Agent Registration",
		fmt.Sprintf("%s (%s) registered and is waiting for document review", agent.AgencyName, agent.City))
	s.publisher.Publish(ctx, withEntity(evt, "agent", agent.ID))

	logger.ExitMethod("authService.RegisterAgent", "agentID", agent.ID)
	return agent, nil
}

func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return domain.ErrInvalidVerification
	}
	user, err := s.userRepo.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidVerification
		}
		return err
	}
	user.EmailVerified = true
	user.VerificationToken = ""
	return s.userRepo.Update(ctx, user)
}

// resolvePrincipal looks the email up among users first, then agents.
func (s *authService) resolvePrincipal(ctx context.Context, email string) (domain.Principal, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	agent, err := s.agentRepo.GetByEmail(ctx, email)
	if err == nil {
		return agent, nil
	}
	if errors.Is(err, domain.ErrAgentNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	return nil, err
}

func (s *authService) Login(ctx context.Context, email, password string) (string, domain.Account, error) {
	logger.EnterMethod("authService.Login", "email", email)

	principal, err := s.resolvePrincipal(ctx, normalizeEmail(email))
	if err != nil {
		logger.ExitMethodWithError("authService.Login", err)
		return "", domain.Account{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.HashedPassword()), []byte(password)); err != nil {
		return "", domain.Account{}, domain.ErrInvalidCredentials
	}
	if err := principal.EligibleToLogin(); err != nil {
		return "", domain.Account{}, err
	}

	account := principal.Account()
	token, err := s.tokens.GenerateAccessToken(account)
	if err != nil {
		return "", domain.Account{}, fmt.Errorf("issue token: %w", err)
	}

	logger.ExitMethod("authService.Login", "kind", account.Kind, "accountID", account.ID)
	return token, account, nil
}
