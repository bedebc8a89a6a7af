package dynamo

// Attribute names shared by key lookups, update expressions and
// uniqueness checks across repos.
const (
	fieldUserID    = "user_id"
	fieldEmail     = "email"
	fieldName      = "name"
	fieldUpdatedAt = "updated_at"
)
