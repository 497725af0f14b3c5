package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/infrastructure/auth"
)

// LoginRequest carries login credentials
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult bundles the issued token with the authenticated user
type LoginResult struct {
	Token *auth.Token  `json:"token"`
	User  UserResponse `json:"user"`
}

// CreateUserRequest carries the fields for registering a user. Admin only.
type CreateUserRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// UpdateUserRequest carries a partial update of a user record
type UpdateUserRequest struct {
	Name        *string   `json:"name"`
	Email       *string   `json:"email"`
	Role        *string   `json:"role"`
	Permissions *[]string `json:"permissions"`
	Password    *string   `json:"password"`
}

// UserListFilter narrows a user listing
type UserListFilter struct {
	Role     string
	Search   string
	Page     int
	PageSize int
}

// UserResponse is the read model for a user. The password hash never leaves
// the service layer.
type UserResponse struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Permissions  []string   `json:"permissions"`
	Capabilities []string   `json:"capabilities"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToUserResponse maps a user to its read model, including the resolved
// capability set so clients can gate UI affordances
func ToUserResponse(u *identity.User) UserResponse {
	permissions := make([]string, len(u.Permissions))
	for i, p := range u.Permissions {
		permissions[i] = p.String()
	}
	resolved := identity.Resolve(u)
	capabilities := make([]string, len(resolved))
	for i, c := range resolved {
		capabilities[i] = c.String()
	}
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role.String(),
		Permissions:  permissions,
		Capabilities: capabilities,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
	}
}
