package models

import (
	"sort"
	"time"
)

// Thread types.
const (
	ThreadTypeDirect = "direct"
	ThreadTypeGroup  = "group"
)

// Thread represents a conversation container in the `threads` collection.
// Field names are the wire schema shared with the existing backend and must
// not change.
type Thread struct {
	ID                  string           `json:"id" firestore:"-"`
	Type                string           `json:"type" firestore:"type"`
	Members             []string         `json:"members" firestore:"members"`
	LastMessage         string           `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageSenderID string           `json:"last_message_sender_id,omitempty" firestore:"lastMessageSenderId,omitempty"`
	LastMessageAt       time.Time        `json:"last_message_at,omitempty" firestore:"lastMessageAt,omitempty"`
	UnreadCounts        map[string]int64 `json:"unread_counts" firestore:"unreadCounts"`
	CreatedAt           time.Time        `json:"created_at" firestore:"createdAt"`
}

// DirectThreadID derives the document ID for a direct thread from its member
// pair. The ID is order-independent, so concurrent first messages from both
// parties converge on the same document.
func DirectThreadID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return "dm_" + a + "_" + b
}

// Counterpart returns the other member of a direct thread.
func (t *Thread) Counterpart(uid string) (string, bool) {
	if t.Type != ThreadTypeDirect {
		return "", false
	}
	for _, m := range t.Members {
		if m != uid {
			return m, true
		}
	}
	return "", false
}

// ActivityTime is the sort key for thread lists: last message time, falling
// back to creation time for threads with no messages yet.
func (t *Thread) ActivityTime() time.Time {
	if !t.LastMessageAt.IsZero() {
		return t.LastMessageAt
	}
	return t.CreatedAt
}

// UnreadFor returns the denormalized unread count for a member.
func (t *Thread) UnreadFor(uid string) int64 {
	if t.UnreadCounts == nil {
		return 0
	}
	return t.UnreadCounts[uid]
}

// SortThreadsByActivity orders threads most-recently-active first.
func SortThreadsByActivity(threads []Thread) {
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].ActivityTime().After(threads[j].ActivityTime())
	})
}

// ThreadView is a thread enriched for display: the counterpart's profile for
// direct threads and the viewer's unread count.
type ThreadView struct {
	Thread
	Counterpart *UserProfile `json:"counterpart,omitempty"`
	UnreadCount int64        `json:"unread_count"`
}
