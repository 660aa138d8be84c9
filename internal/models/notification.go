package models

import "time"

// Notification type tags written by the server-side triggers.
const (
	NotificationTypeApplication      = "application"
	NotificationTypePayment          = "payment"
	NotificationTypeMessageReceived  = "message-received"
	NotificationTypeMembershipExpiry = "membership-expiry"
	NotificationTypeMention          = "mention"
)

// Notification represents a document in a user's `notifications`
// sub-collection. The gateway only ever flips the read flag; creation is
// owned by server-side triggers.
type Notification struct {
	ID          string    `json:"id" firestore:"-"`
	Type        string    `json:"type" firestore:"type"`
	Title       string    `json:"title" firestore:"title"`
	Body        string    `json:"body" firestore:"body"`
	Read        bool      `json:"read" firestore:"read"`
	ActionURL   string    `json:"action_url,omitempty" firestore:"actionUrl,omitempty"`
	ActionLabel string    `json:"action_label,omitempty" firestore:"actionLabel,omitempty"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
}
