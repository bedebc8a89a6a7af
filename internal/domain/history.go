package domain

import "time"

const (
	RequestFromUser = "user"
	RequestFromApp  = "app"
)

// History records one conversion request and its result.
type History struct {
	HistoryID  string    `json:"id" dynamodbav:"history_id"`
	ReqText    string    `json:"req_text" dynamodbav:"req_text"`
	ReqFileURL *string   `json:"req_file_url" dynamodbav:"req_file_url,omitempty"`
	ResText    string    `json:"res_text" dynamodbav:"res_text"`
	ResFileURL *string   `json:"res_file_url" dynamodbav:"res_file_url,omitempty"`
	ReqFrom    string    `json:"req_from" dynamodbav:"req_from"`
	UserID     *string   `json:"user_id" dynamodbav:"user_id,omitempty"`
	AppID      *string   `json:"app_id" dynamodbav:"app_id,omitempty"`
	Timestamp  time.Time `json:"timestamp" dynamodbav:"timestamp"`
}
