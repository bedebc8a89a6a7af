package domain

import "time"

// APIDoc documents one public endpoint of the conversion API.
type APIDoc struct {
	APIDocID       string    `json:"id" dynamodbav:"api_doc_id"`
	URL            string    `json:"url" dynamodbav:"url"`
	Method         string    `json:"method" dynamodbav:"method"`
	Payload        string    `json:"payload" dynamodbav:"payload"`
	Response       string    `json:"response" dynamodbav:"response"`
	Authentication string    `json:"authentication" dynamodbav:"authentication"`
	Description    string    `json:"description" dynamodbav:"description"`
	DemoURL        string    `json:"demo_url" dynamodbav:"demo_url"`
	CreatedBy      string    `json:"created_by" dynamodbav:"created_by"`
	IsActive       bool      `json:"is_active" dynamodbav:"is_active"`
	CreatedAt      time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

type CreateAPIDocRequest struct {
	URL            string `json:"url" validate:"required"`
	Method         string `json:"method" validate:"required,oneof=GET POST PUT DELETE PATCH"`
	Payload        string `json:"payload"`
	Response       string `json:"response"`
	Authentication string `json:"authentication"`
	Description    string `json:"description" validate:"required"`
	DemoURL        string `json:"demo_url"`
	IsActive       *bool  `json:"is_active"`
}

type UpdateAPIDocRequest struct {
	URL            *string `json:"url"`
	Method         *string `json:"method" validate:"omitempty,oneof=GET POST PUT DELETE PATCH"`
	Payload        *string `json:"payload"`
	Response       *string `json:"response"`
	Authentication *string `json:"authentication"`
	Description    *string `json:"description"`
	DemoURL        *string `json:"demo_url"`
	IsActive       *bool   `json:"is_active"`
}
