package domain

import "time"

type ItemStatus string

const (
	StatusLost     ItemStatus = "Lost"
	StatusFound    ItemStatus = "Found"
	StatusReturned ItemStatus = "Returned"
)

// Opposite returns the status a candidate match must carry. Returned has no opposite.
func (s ItemStatus) Opposite() (ItemStatus, bool) {
	switch s {
	case StatusLost:
		return StatusFound, true
	case StatusFound:
		return StatusLost, true
	}
	return "", false
}

type Item struct {
	ItemID      string     `json:"id" dynamodbav:"item_id"`
	Title       string     `json:"title" dynamodbav:"title"`
	Description string     `json:"description" dynamodbav:"description"`
	Category    string     `json:"category" dynamodbav:"category"`
	ContactInfo string     `json:"contact_info" dynamodbav:"contact_info"`
	Location    string     `json:"location" dynamodbav:"location"`
	ImageURL    *string    `json:"image_url" dynamodbav:"image_url"`
	PostedBy    string     `json:"posted_by" dynamodbav:"posted_by"`
	Status      ItemStatus `json:"status" dynamodbav:"status"`
	Date        time.Time  `json:"date" dynamodbav:"date"`
}

// CreateItemRequest carries the form fields of a new report. Values are trimmed before validation.
type CreateItemRequest struct {
	Title       string `validate:"required"`
	Description string
	Category    string `validate:"required"`
	ContactInfo string
	Location    string
	Status      string `validate:"required,oneof=Lost Found"`
}

// ItemFilter narrows GET /items. Empty fields are ignored.
type ItemFilter struct {
	Status   string
	Category string
}

// MatchedItem is the minimal projection of the opposing item returned alongside a generated match.
type MatchedItem struct {
	ItemID      string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
