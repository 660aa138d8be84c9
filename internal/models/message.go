package models

import "time"

// Message represents a document in a thread's `messages` sub-collection.
// The readBy set only ever grows; no operation removes a reader.
type Message struct {
	ID        string    `json:"id" firestore:"-"`
	ThreadID  string    `json:"thread_id" firestore:"threadId"`
	SenderID  string    `json:"sender_id" firestore:"senderId"`
	Text      string    `json:"text" firestore:"text"`
	ReadBy    []string  `json:"read_by" firestore:"readBy"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

// ReadByUser reports whether uid is already in the read-by set.
func (m *Message) ReadByUser(uid string) bool {
	for _, r := range m.ReadBy {
		if r == uid {
			return true
		}
	}
	return false
}

// UnreadFor reports whether the message counts as unread for uid: authored
// by someone else and not yet acknowledged.
func (m *Message) UnreadFor(uid string) bool {
	return m.SenderID != uid && !m.ReadByUser(uid)
}

// SendMessageRequest is the payload for sending a direct message. Exactly
// one of thread_id and to_user_id must be set; to_user_id starts (or reuses)
// the direct thread with that user.
type SendMessageRequest struct {
	ThreadID string `json:"thread_id,omitempty" validate:"omitempty,max=128"`
	ToUserID string `json:"to_user_id,omitempty" validate:"omitempty,max=128"`
	Text     string `json:"text" validate:"required,min=1,max=4000"`
}

// CreateGroupThreadRequest is the payload for creating a group thread.
type CreateGroupThreadRequest struct {
	Members []string `json:"members" validate:"required,min=1,max=50,dive,required,max=128"`
}
