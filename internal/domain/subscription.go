package domain

import "time"

const (
	SubscriptionActive   = "active"
	SubscriptionCanceled = "canceled"
	SubscriptionPastDue  = "past_due"
	SubscriptionUnpaid   = "unpaid"
	SubscriptionTrialing = "trialing"
)

// ValidSubscriptionStatus reports whether s is a known subscription status.
func ValidSubscriptionStatus(s string) bool {
	switch s {
	case SubscriptionActive, SubscriptionCanceled, SubscriptionPastDue, SubscriptionUnpaid, SubscriptionTrialing:
		return true
	}
	return false
}

type Subscription struct {
	SubscriptionID       string     `json:"id" dynamodbav:"subscription_id"`
	UserID               string     `json:"user_id" dynamodbav:"user_id"`
	AppID                string     `json:"app_id" dynamodbav:"app_id"`
	PackageID            string     `json:"package_id" dynamodbav:"package_id"`
	StripeSubscriptionID string     `json:"stripe_subscription_id" dynamodbav:"stripe_subscription_id"`
	StartDate            time.Time  `json:"start_date" dynamodbav:"start_date"`
	EndDate              time.Time  `json:"end_date" dynamodbav:"end_date"`
	CancelAtPeriodEnd    *time.Time `json:"cancel_at_period_end" dynamodbav:"cancel_at_period_end,omitempty"`
	Status               string     `json:"status" dynamodbav:"status"`
}

type CreateSubscriptionRequest struct {
	UserID               string    `json:"user_id" validate:"required"`
	AppID                string    `json:"app_id" validate:"required"`
	PackageID            string    `json:"package_id" validate:"required"`
	StripeSubscriptionID string    `json:"stripe_subscription_id" validate:"required"`
	StartDate            time.Time `json:"start_date" validate:"required"`
	EndDate              time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	Status               string    `json:"status" validate:"omitempty,oneof=active canceled past_due unpaid trialing"`
}

type SubscriptionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active canceled past_due unpaid trialing"`
}

type CancelSubscriptionRequest struct {
	CancelAt *time.Time `json:"cancel_at"`
}
