package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pharmacare/backend/internal/domain/identity"
	"github.com/pharmacare/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService manages staff accounts
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{userRepo: userRepo, logger: logger}
}

// Create adds a staff account
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*identity.User, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
	}

	user, err := identity.NewUser(in.Username, in.Password, identity.Role(in.Role))
	if err != nil {
		return nil, err
	}
	user.DisplayName = in.DisplayName

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", user.Role.String()),
	)
	return user, nil
}

// Get fetches a user by ID
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// SetActive enables or disables an account. Deactivated users cannot log
// in or refresh tokens.
func (s *UserService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Active = active
	user.Touch()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangeRole assigns a different role to an account
func (s *UserService) ChangeRole(ctx context.Context, id uuid.UUID, role string) (*identity.User, error) {
	r := identity.Role(role)
	if !r.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Role = r
	user.Touch()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user role changed",
		zap.String("user_id", user.ID.String()),
		zap.String("role", role),
	)
	return user, nil
}
