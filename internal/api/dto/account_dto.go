package dto

import (
	"time"

	"github.com/spec-kit/shipment-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse reports the issued token and a role-collapsed user view.
type LoginResponse struct {
	Message   string    `json:"message"`
	AuthToken string    `json:"auth_token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserView  `json:"user"`
}

// UserView is the public user representation. The password hash is never part
// of any response.
type UserView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// ProfileResponse is the /api/home payload.
type ProfileResponse struct {
	UserID   int64    `json:"user_id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// NewProfileResponse builds the profile view from a domain user.
func NewProfileResponse(user *domain.User) ProfileResponse {
	return ProfileResponse{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.RoleNames(),
	}
}
