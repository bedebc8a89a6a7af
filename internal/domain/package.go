package domain

import "time"

const (
	PackageTypeUser = "user"
	PackageTypeApp  = "app"
)

// Package is a purchasable plan backed by a Stripe price.
type Package struct {
	PackageID     string    `json:"id" dynamodbav:"package_id"`
	Name          string    `json:"name" dynamodbav:"name"`
	StripePriceID string    `json:"stripe_price_id" dynamodbav:"stripe_price_id"`
	Type          string    `json:"type" dynamodbav:"type"`
	IsActive      bool      `json:"is_active" dynamodbav:"is_active"`
	CreatedAt     time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

type CreatePackageRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=100"`
	StripePriceID string `json:"stripe_price_id" validate:"required"`
	Type          string `json:"type" validate:"omitempty,oneof=user app"`
	IsActive      *bool  `json:"is_active"`
}

type UpdatePackageRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=2,max=100"`
	StripePriceID *string `json:"stripe_price_id"`
	Type          *string `json:"type" validate:"omitempty,oneof=user app"`
	IsActive      *bool   `json:"is_active"`
}
