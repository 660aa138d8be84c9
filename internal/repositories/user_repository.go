package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/models"
)

// UserRepository defines read-only access to the `users` collection. User
// profiles are owned by the platform backend; this layer never writes them.
type UserRepository interface {
	GetProfile(ctx context.Context, uid string) (*models.UserProfile, error)
	GetByHandle(ctx context.Context, handle string) (*models.UserProfile, error)
	SearchByHandlePrefix(ctx context.Context, prefix string, limit int) ([]models.UserProfile, error)
}

// FirestoreUserRepository implements UserRepository.
type FirestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new FirestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) *FirestoreUserRepository {
	return &FirestoreUserRepository{client: client}
}

func (r *FirestoreUserRepository) users() *firestore.CollectionRef {
	return r.client.Collection(colUsers)
}

// GetProfile fetches a user profile by UID.
func (r *FirestoreUserRepository) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	doc, err := r.users().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeProfile(doc)
}

// GetByHandle fetches the profile owning a handle.
func (r *FirestoreUserRepository) GetByHandle(ctx context.Context, handle string) (*models.UserProfile, error) {
	docs := r.users().Where("handle", "==", handle).Limit(1).Documents(ctx)
	defer docs.Stop()

	doc, err := docs.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeProfile(doc)
}

// SearchByHandlePrefix returns profiles whose handle starts with prefix,
// using the standard Firestore range-query trick for prefix matching.
func (r *FirestoreUserRepository) SearchByHandlePrefix(ctx context.Context, prefix string, limit int) ([]models.UserProfile, error) {
	docs := r.users().
		Where("handle", ">=", prefix).
		Where("handle", "<", prefix+"").
		Limit(limit).
		Documents(ctx)
	defer docs.Stop()

	var profiles []models.UserProfile
	for {
		doc, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		p, err := decodeProfile(doc)
		if err != nil {
			continue
		}
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

func decodeProfile(doc *firestore.DocumentSnapshot) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode user profile: %w", err)
	}
	p.UID = doc.Ref.ID
	if p.DisplayName == "" {
		p.DisplayName = models.PlaceholderDisplayName
	}
	return &p, nil
}
