package service

import (
	"context"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/repository"
)

type userService struct {
	userRepo  repository.UserRepository
	agentRepo repository.AgentRepository
}

func NewUserService(userRepo repository.UserRepository, agentRepo repository.AgentRepository) UserService {
	return &userService{userRepo: userRepo, agentRepo: agentRepo}
}

func (s *userService) GetUserProfile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateUserProfile only touches contact fields. Role, email and status are
// not editable here.
func (s *userService) UpdateUserProfile(ctx context.Context, userID int64, update domain.UserProfileUpdate) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	update.Apply(user)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetAgentProfile(ctx context.Context, agentID int64) (*domain.Agent, error) {
	return s.agentRepo.GetByID(ctx, agentID)
}

func (s *userService) UpdateAgentProfile(ctx context.Context, agentID int64, update domain.AgentProfileUpdate) (*domain.Agent, error) {
	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	update.Apply(agent)
	if err := s.agentRepo.Update(ctx, agent); err != nil {
		return nil, err
	}
	return agent, nil
}
