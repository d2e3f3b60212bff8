package domain

import "time"

type MatchStatus string

const (
	MatchPending   MatchStatus = "Pending"
	MatchConfirmed MatchStatus = "Confirmed"
	MatchRejected  MatchStatus = "Rejected"
)

// Valid reports whether s is one of the three known match states.
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchPending, MatchConfirmed, MatchRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s.
func (s MatchStatus) Terminal() bool {
	return s == MatchConfirmed || s == MatchRejected
}

type Match struct {
	MatchID         string      `json:"id" dynamodbav:"match_id"`
	LostItemID      string      `json:"lost_item_id" dynamodbav:"lost_item_id"`
	FoundItemID     string      `json:"found_item_id" dynamodbav:"found_item_id"`
	ConfidenceScore int         `json:"confidence_score" dynamodbav:"confidence_score"`
	Status          MatchStatus `json:"status" dynamodbav:"status"`
	CreatedAt       time.Time   `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt       *time.Time  `json:"updated_at,omitempty" dynamodbav:"updated_at"`
}

// GeneratedMatch is what item creation reports back for each materialized match.
type GeneratedMatch struct {
	MatchID         string      `json:"match_id"`
	ConfidenceScore int         `json:"confidence_score"`
	MatchedItem     MatchedItem `json:"matched_item"`
}

type UpdateMatchStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
