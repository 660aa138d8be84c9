package repositories

import "errors"

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Firestore collection names. These are the wire schema shared with the
// existing backend and must be preserved exactly.
const (
	colThreads             = "threads"
	colMessages            = "messages"
	colUsers               = "users"
	colNotifications       = "notifications"
	colMessageBoardPosts   = "messageBoardPosts"
	colComments            = "comments"
	colReactions           = "reactions"
	colLegacySubscriptions = "legacySubscriptions"
)
