package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService handles user administration. Every operation requires an admin
// actor; regular users only see themselves through the auth service.
type UserService struct {
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *UserService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *UserService) publishDomainEvents(ctx context.Context, user *identity.User) {
	if s.eventPublisher == nil {
		user.ClearDomainEvents()
		return
	}
	events := user.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	user.ClearDomainEvents()
}

func (s *UserService) requireAdmin(ctx context.Context, actorID uuid.UUID) (*identity.User, error) {
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	if !actor.IsActive {
		return nil, shared.ErrUnauthorized
	}
	if actor.Role != identity.RoleAdmin {
		return nil, shared.ErrForbidden
	}
	return actor, nil
}

// Create registers a new user. Username and email must be unique.
func (s *UserService) Create(ctx context.Context, actorID uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	user, err := identity.NewUser(req.Username, req.Name, req.Email, identity.Role(req.Role), req.Password)
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByUsername(ctx, user.Username)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
	}
	existing, err = s.userRepo.FindByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already in use")
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, user)
	s.logger.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", user.Role.String()),
	)

	response := ToUserResponse(user)
	return &response, nil
}

// Update applies a partial update to a user record
func (s *UserService) Update(ctx context.Context, actorID, userID uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		existing, err := s.userRepo.FindByEmail(ctx, *req.Email)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != user.ID {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already in use")
		}
		if err := user.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.Name != nil {
		if err := user.SetName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Role != nil {
		if err := user.SetRole(identity.Role(*req.Role)); err != nil {
			return nil, err
		}
	}
	if req.Permissions != nil {
		capabilities := make([]identity.Capability, len(*req.Permissions))
		for i, p := range *req.Permissions {
			capabilities[i] = identity.Capability(p)
		}
		if err := user.SetPermissions(capabilities); err != nil {
			return nil, err
		}
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// Deactivate disables a user account. Admins cannot deactivate themselves,
// so the system always keeps at least one working admin login.
func (s *UserService) Deactivate(ctx context.Context, actorID, userID uuid.UUID) error {
	actor, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if actor.ID == userID {
		return shared.NewDomainError("INVALID_INPUT", "Cannot deactivate your own account")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.Deactivate(); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}

	s.publishDomainEvents(ctx, user)
	return nil
}

// Activate re-enables a deactivated user account
func (s *UserService) Activate(ctx context.Context, actorID, userID uuid.UUID) error {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.Activate(); err != nil {
		return err
	}
	return s.userRepo.Save(ctx, user)
}

// GetByID retrieves a single user
func (s *UserService) GetByID(ctx context.Context, actorID, userID uuid.UUID) (*UserResponse, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// List retrieves users with filtering and pagination
func (s *UserService) List(ctx context.Context, actorID uuid.UUID, filter UserListFilter) (*shared.Paginated[UserResponse], error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "username",
		OrderDir: "asc",
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Role != "" {
		role := identity.Role(filter.Role)
		if !role.IsValid() {
			return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
		}
		domainFilter.Filters["role"] = filter.Role
	}

	users, err := s.userRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.userRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}
	result := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &result, nil
}
