package models

// PlaceholderDisplayName is shown when a counterpart profile lookup fails;
// a missing profile never fails the thread list.
const PlaceholderDisplayName = "Unknown member"

// UserProfile is the read-only view of a document in the `users` collection.
type UserProfile struct {
	UID              string `json:"uid" firestore:"-"`
	DisplayName      string `json:"display_name" firestore:"displayName"`
	Handle           string `json:"handle" firestore:"handle"`
	AvatarURL        string `json:"avatar_url,omitempty" firestore:"avatarUrl,omitempty"`
	MembershipPlan   string `json:"membership_plan,omitempty" firestore:"membershipPlan,omitempty"`
	MembershipActive bool   `json:"membership_active" firestore:"membershipActive"`
}

// PlaceholderProfile returns the degraded profile used when a lookup fails.
func PlaceholderProfile(uid string) *UserProfile {
	return &UserProfile{UID: uid, DisplayName: PlaceholderDisplayName}
}

// ReportUserRequest is the payload forwarded to the platform report endpoint.
type ReportUserRequest struct {
	Reason  string `json:"reason" validate:"required,min=3,max=500"`
	Details string `json:"details,omitempty" validate:"omitempty,max=4000"`
}
