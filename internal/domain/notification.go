package domain

import "time"

type Notification struct {
	NotificationID string     `json:"id" dynamodbav:"notification_id"`
	UserID         string     `json:"user_id" dynamodbav:"user_id"`
	MatchID        string     `json:"match_id" dynamodbav:"match_id"`
	Message        string     `json:"message" dynamodbav:"message"`
	IsRead         bool       `json:"is_read" dynamodbav:"is_read"`
	CreatedAt      time.Time  `json:"created_at" dynamodbav:"created_at"`
	ReadAt         *time.Time `json:"read_at,omitempty" dynamodbav:"read_at"`
}
