package models

import "time"

// LegacySubscription is the read-only view of a document in the
// `legacySubscriptions` collection. These records predate the payment
// processor migration and are never written by this layer.
type LegacySubscription struct {
	ID               string    `json:"id" firestore:"-"`
	UserID           string    `json:"user_id" firestore:"userId"`
	CreatorID        string    `json:"creator_id" firestore:"creatorId"`
	Plan             string    `json:"plan" firestore:"plan"`
	Status           string    `json:"status" firestore:"status"`
	CurrentPeriodEnd time.Time `json:"current_period_end,omitempty" firestore:"currentPeriodEnd,omitempty"`
	CreatedAt        time.Time `json:"created_at" firestore:"createdAt"`
}

// ChangePlanRequest is forwarded to the platform subscription endpoint.
type ChangePlanRequest struct {
	Plan string `json:"plan" validate:"required,min=1,max=64"`
}

// CheckoutRequest is forwarded to the platform checkout endpoint.
type CheckoutRequest struct {
	Plan       string `json:"plan" validate:"required,min=1,max=64"`
	SuccessURL string `json:"success_url" validate:"required,url"`
	CancelURL  string `json:"cancel_url" validate:"required,url"`
}
