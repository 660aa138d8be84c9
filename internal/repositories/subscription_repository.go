package repositories

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/models"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/pkg/logger"
)

// LegacySubscriptionRepository reads the `legacySubscriptions` collection.
// Records there predate the payment processor migration and are read-only.
type LegacySubscriptionRepository interface {
	ListByUser(ctx context.Context, uid string) ([]models.LegacySubscription, error)
}

// FirestoreLegacySubscriptionRepository implements LegacySubscriptionRepository.
type FirestoreLegacySubscriptionRepository struct {
	client *firestore.Client
}

// NewFirestoreLegacySubscriptionRepository creates a new repository.
func NewFirestoreLegacySubscriptionRepository(client *firestore.Client) *FirestoreLegacySubscriptionRepository {
	return &FirestoreLegacySubscriptionRepository{client: client}
}

// ListByUser returns the user's legacy subscription records, newest first.
func (r *FirestoreLegacySubscriptionRepository) ListByUser(ctx context.Context, uid string) ([]models.LegacySubscription, error) {
	docs := r.client.Collection(colLegacySubscriptions).
		Where("userId", "==", uid).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer docs.Stop()

	var subs []models.LegacySubscription
	for {
		doc, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var s models.LegacySubscription
		if err := doc.DataTo(&s); err != nil {
			logger.Get().Warn().Err(err).Str("subscription_id", doc.Ref.ID).Msg("skipping malformed legacy subscription")
			continue
		}
		s.ID = doc.Ref.ID
		if s.CreatedAt.IsZero() {
			s.CreatedAt = doc.CreateTime
		}
		subs = append(subs, s)
	}
	return subs, nil
}
