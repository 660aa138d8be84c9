package models

import "time"

// Post represents a document in the `messageBoardPosts` collection.
type Post struct {
	ID         string    `json:"id" firestore:"-"`
	AuthorID   string    `json:"author_id" firestore:"authorId"`
	AuthorName string    `json:"author_name" firestore:"authorName"`
	Title      string    `json:"title,omitempty" firestore:"title,omitempty"`
	Body       string    `json:"body" firestore:"body"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
}

// Comment represents a document in a post's `comments` sub-collection.
type Comment struct {
	ID         string    `json:"id" firestore:"-"`
	AuthorID   string    `json:"author_id" firestore:"authorId"`
	AuthorName string    `json:"author_name" firestore:"authorName"`
	Body       string    `json:"body" firestore:"body"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
}

// Reaction represents a document in a post's `reactions` sub-collection.
// The document ID is the reacting user's UID, so reacting twice is a no-op.
type Reaction struct {
	UserID    string    `json:"user_id" firestore:"-"`
	Kind      string    `json:"kind" firestore:"kind"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

// CreatePostRequest is the payload for creating a message-board post.
// Validation happens before any network write.
type CreatePostRequest struct {
	Title string `json:"title,omitempty" validate:"omitempty,max=200"`
	Body  string `json:"body" validate:"required,min=1,max=10000"`
}
