package domain

import "time"

const (
	TransactionPending   = "pending"
	TransactionCompleted = "completed"
	TransactionFailed    = "failed"
	TransactionRefunded  = "refunded"
)

// ValidTransactionStatus reports whether s is a known transaction status.
func ValidTransactionStatus(s string) bool {
	switch s {
	case TransactionPending, TransactionCompleted, TransactionFailed, TransactionRefunded:
		return true
	}
	return false
}

type Transaction struct {
	TransactionID         string    `json:"id" dynamodbav:"transaction_id"`
	SubscriptionID        string    `json:"subscription_id" dynamodbav:"subscription_id"`
	StripePaymentIntentID string    `json:"stripe_payment_intent_id" dynamodbav:"stripe_payment_intent_id"`
	StripeInvoiceID       string    `json:"stripe_invoice_id" dynamodbav:"stripe_invoice_id"`
	Amount                float64   `json:"amount" dynamodbav:"amount"`
	Currency              string    `json:"currency" dynamodbav:"currency"`
	Status                string    `json:"status" dynamodbav:"status"`
	IsActive              bool      `json:"is_active" dynamodbav:"is_active"`
	Timestamp             time.Time `json:"timestamp" dynamodbav:"timestamp"`
}

type CreateTransactionRequest struct {
	SubscriptionID        string  `json:"subscription_id" validate:"required"`
	StripePaymentIntentID string  `json:"stripe_payment_intent_id" validate:"required"`
	StripeInvoiceID       string  `json:"stripe_invoice_id" validate:"required"`
	Amount                float64 `json:"amount" validate:"gte=0"`
	Currency              string  `json:"currency" validate:"required,len=3,uppercase"`
	Status                string  `json:"status" validate:"omitempty,oneof=pending completed failed refunded"`
}

type TransactionStatusRequest struct {
	Status   string `json:"status" validate:"required,oneof=pending completed failed refunded"`
	IsActive *bool  `json:"is_active"`
}
