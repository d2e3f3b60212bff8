package dynamo

// DynamoDB attribute names used in keys and update expressions across all repos.
const (
	fieldItemID         = "item_id"
	fieldMatchID        = "match_id"
	fieldNotificationID = "notification_id"
	fieldUserID         = "user_id"
	fieldStatus         = "status"
	fieldUpdatedAt      = "updated_at"
	fieldIsRead         = "is_read"
	fieldReadAt         = "read_at"
)
