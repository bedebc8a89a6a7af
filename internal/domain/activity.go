package domain

import "time"

const (
	LogInfo    = "info"
	LogWarning = "warning"
	LogError   = "error"
	LogDebug   = "debug"
)

// ActivityLog is an audit entry persisted for the admin log viewer.
type ActivityLog struct {
	LogID     string         `json:"id" dynamodbav:"log_id"`
	Type      string         `json:"type" dynamodbav:"type"`
	CreatedBy string         `json:"created_by" dynamodbav:"created_by"`
	Details   map[string]any `json:"details" dynamodbav:"details"`
	CreatedAt time.Time      `json:"created_at" dynamodbav:"created_at"`
}
