package repositories

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/models"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/pkg/logger"
)

// PostRepository defines the interface for message-board post operations.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) (*models.Post, error)
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, limit int) ([]models.Post, error)
	ListComments(ctx context.Context, postID string, limit int) ([]models.Comment, error)
	AddReaction(ctx context.Context, postID string, reaction *models.Reaction) error
	ListReactions(ctx context.Context, postID string) ([]models.Reaction, error)
}

// FirestorePostRepository implements PostRepository over the
// `messageBoardPosts` collection.
type FirestorePostRepository struct {
	client *firestore.Client
}

// NewFirestorePostRepository creates a new FirestorePostRepository.
func NewFirestorePostRepository(client *firestore.Client) *FirestorePostRepository {
	return &FirestorePostRepository{client: client}
}

func (r *FirestorePostRepository) posts() *firestore.CollectionRef {
	return r.client.Collection(colMessageBoardPosts)
}

// CreatePost creates a new post.
func (r *FirestorePostRepository) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	ref, _, err := r.posts().Add(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.ID = ref.ID
	return post, nil
}

// GetPostByID retrieves a post by ID.
func (r *FirestorePostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	doc, err := r.posts().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var p models.Post
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}
	p.ID = doc.Ref.ID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = doc.CreateTime
	}
	return &p, nil
}

// ListPosts returns the newest posts.
func (r *FirestorePostRepository) ListPosts(ctx context.Context, limit int) ([]models.Post, error) {
	docs := r.posts().
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer docs.Stop()

	var posts []models.Post
	for {
		doc, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var p models.Post
		if err := doc.DataTo(&p); err != nil {
			logger.Get().Warn().Err(err).Str("post_id", doc.Ref.ID).Msg("skipping malformed post document")
			continue
		}
		p.ID = doc.Ref.ID
		if p.CreatedAt.IsZero() {
			p.CreatedAt = doc.CreateTime
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// ListComments returns a post's comments, oldest first.
func (r *FirestorePostRepository) ListComments(ctx context.Context, postID string, limit int) ([]models.Comment, error) {
	docs := r.posts().Doc(postID).Collection(colComments).
		OrderBy("createdAt", firestore.Asc).
		Limit(limit).
		Documents(ctx)
	defer docs.Stop()

	var comments []models.Comment
	for {
		doc, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var c models.Comment
		if err := doc.DataTo(&c); err != nil {
			logger.Get().Warn().Err(err).Str("comment_id", doc.Ref.ID).Msg("skipping malformed comment document")
			continue
		}
		c.ID = doc.Ref.ID
		if c.CreatedAt.IsZero() {
			c.CreatedAt = doc.CreateTime
		}
		comments = append(comments, c)
	}
	return comments, nil
}

// AddReaction records a reaction keyed by the reacting user's UID, so a
// repeated reaction overwrites rather than duplicates.
func (r *FirestorePostRepository) AddReaction(ctx context.Context, postID string, reaction *models.Reaction) error {
	if reaction.CreatedAt.IsZero() {
		reaction.CreatedAt = time.Now().UTC()
	}
	_, err := r.posts().Doc(postID).Collection(colReactions).Doc(reaction.UserID).Set(ctx, reaction)
	if err != nil {
		return fmt.Errorf("add reaction: %w", err)
	}
	return nil
}

// ListReactions returns all reactions on a post.
func (r *FirestorePostRepository) ListReactions(ctx context.Context, postID string) ([]models.Reaction, error) {
	docs := r.posts().Doc(postID).Collection(colReactions).Documents(ctx)
	defer docs.Stop()

	var reactions []models.Reaction
	for {
		doc, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var re models.Reaction
		if err := doc.DataTo(&re); err != nil {
			continue
		}
		re.UserID = doc.Ref.ID
		reactions = append(reactions, re)
	}
	return reactions, nil
}
