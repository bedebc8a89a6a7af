package domain

import "time"

const (
	RoleEndUser = "end_user"
	RoleAdmin   = "admin"
)

// User is the persisted account record. Email is unique across all users.
type User struct {
	UserID    string    `json:"id" dynamodbav:"user_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	FullName  string    `json:"full_name" dynamodbav:"full_name"`
	Role      string    `json:"role" dynamodbav:"role"`
	IsActive  bool      `json:"is_active" dynamodbav:"is_active"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Role     string `json:"role" validate:"omitempty,oneof=end_user admin"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Role     *string `json:"role" validate:"omitempty,oneof=end_user admin"`
}

type StatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}
