package constants

import "math"

// Pagination
const (
	MinPage         = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage keeps (page-1)*MaxPageSize within int.
	MaxPage = math.MaxInt / MaxPageSize
)

// Session and context keys
const (
	SessionCookieName   = "issue_session"
	ContextKeyUserID    = "user_id"
	ContextKeyRequestID = "request_id"
	HeaderRequestID     = "X-Request-ID"
)

// Field limits
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 65536
	MinPasswordLength    = 8
)

// AllUsersSentinel is the userId filter value meaning "no assignee constraint".
const AllUsersSentinel = "-1"

// MaxAIGeneratedIssues caps the number of drafts accepted from a single generation.
const MaxAIGeneratedIssues = 20
