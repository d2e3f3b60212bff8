package domain

import "time"

// Identity is what the identity collaborator returns for a verified bearer credential.
type Identity struct {
	UserID        string
	Email         string
	EmailVerified bool
}

type UserProfile struct {
	UserID      string    `json:"id" dynamodbav:"user_id"`
	Email       string    `json:"email" dynamodbav:"email"`
	DisplayName string    `json:"display_name" dynamodbav:"display_name"`
	Phone       *string   `json:"phone" dynamodbav:"phone"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Profile is a UserProfile enriched with the number of items the user has posted.
type Profile struct {
	UserProfile
	ItemsCount int `json:"items_count"`
}

type UpsertProfileRequest struct {
	DisplayName string  `json:"display_name" validate:"required,max=80"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
}
