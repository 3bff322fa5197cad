package constants

// Context keys shared between middleware and handlers.
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
)

// TokenTypeBearer is the token_type label returned on credential issuance.
const TokenTypeBearer = "bearer"

const (
	MinUsernameLength = 2
	MaxUsernameLength = 50
	MinPasswordLength = 6
	MaxPasswordLength = 128
)

const (
	MinPriority = 1
	MaxPriority = 4

	MinAcceptCount = 1
	MaxAcceptCount = 100
)

// Pagination bounds.
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// FeedSnapshotSize is how many feed entries are kept per refresh.
const FeedSnapshotSize = 5
