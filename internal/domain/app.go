package domain

import "time"

// App is a client application registered by a user.
type App struct {
	AppID       string    `json:"id" dynamodbav:"app_id"`
	OwnerID     string    `json:"owner_id" dynamodbav:"owner_id"`
	Name        string    `json:"name" dynamodbav:"name"`
	Description string    `json:"description" dynamodbav:"description"`
	IsActive    bool      `json:"is_active" dynamodbav:"is_active"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

type CreateAppRequest struct {
	OwnerID     string `json:"owner_id" validate:"required"`
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"required"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateAppRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}
