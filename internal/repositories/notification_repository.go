package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/models"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/pkg/logger"
)

// NotificationRepository defines access to a user's `notifications`
// sub-collection. Documents are created by server-side triggers; this layer
// only reads them and flips the read flag.
type NotificationRepository interface {
	WatchRecent(ctx context.Context, uid string, limit int) (<-chan []models.Notification, <-chan error)
	WatchUnreadCount(ctx context.Context, uid string) (<-chan int64, <-chan error)
	ListRecent(ctx context.Context, uid string, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, uid string) (int64, error)
	MarkRead(ctx context.Context, uid, notificationID string) error
	MarkAllRead(ctx context.Context, uid string) error
}

// FirestoreNotificationRepository implements NotificationRepository.
type FirestoreNotificationRepository struct {
	client *firestore.Client
}

// NewFirestoreNotificationRepository creates a new FirestoreNotificationRepository.
func NewFirestoreNotificationRepository(client *firestore.Client) *FirestoreNotificationRepository {
	return &FirestoreNotificationRepository{client: client}
}

func (r *FirestoreNotificationRepository) notifications(uid string) *firestore.CollectionRef {
	return r.client.Collection(colUsers).Doc(uid).Collection(colNotifications)
}

// WatchRecent opens a live query over the newest notifications, capped at
// limit. The cap bounds the feed, not the unread count.
func (r *FirestoreNotificationRepository) WatchRecent(ctx context.Context, uid string, limit int) (<-chan []models.Notification, <-chan error) {
	updates := make(chan []models.Notification)
	errc := make(chan error, 1)

	go func() {
		defer close(updates)
		it := r.notifications(uid).
			OrderBy("createdAt", firestore.Desc).
			Limit(limit).
			Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				errc <- err
				return
			}
			items := decodeNotificationDocs(snap.Documents)
			select {
			case updates <- items:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()

	return updates, errc
}

// WatchUnreadCount opens a live query over all unread notifications and
// delivers the current count on every change, independent of the feed cap.
func (r *FirestoreNotificationRepository) WatchUnreadCount(ctx context.Context, uid string) (<-chan int64, <-chan error) {
	counts := make(chan int64)
	errc := make(chan error, 1)

	go func() {
		defer close(counts)
		it := r.notifications(uid).Where("read", "==", false).Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				errc <- err
				return
			}
			select {
			case counts <- int64(snap.Size):
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()

	return counts, errc
}

// ListRecent is the one-shot variant of WatchRecent.
func (r *FirestoreNotificationRepository) ListRecent(ctx context.Context, uid string, limit int) ([]models.Notification, error) {
	docs := r.notifications(uid).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	return decodeNotificationDocs(docs), nil
}

// UnreadCount counts every unread notification, regardless of the feed cap.
func (r *FirestoreNotificationRepository) UnreadCount(ctx context.Context, uid string) (int64, error) {
	docs := r.notifications(uid).Where("read", "==", false).Documents(ctx)
	defer docs.Stop()

	var count int64
	for {
		_, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// MarkRead flips a single notification's read flag.
func (r *FirestoreNotificationRepository) MarkRead(ctx context.Context, uid, notificationID string) error {
	_, err := r.notifications(uid).Doc(notificationID).Update(ctx, []firestore.Update{
		{Path: "read", Value: true},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead flips every unread notification. Per-document updates are
// best-effort; a failed document stays unread and is reported.
func (r *FirestoreNotificationRepository) MarkAllRead(ctx context.Context, uid string) error {
	docs := r.notifications(uid).Where("read", "==", false).Documents(ctx)
	defer docs.Stop()

	var firstErr error
	for {
		doc, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return err
		}
		if _, err := doc.Ref.Update(ctx, []firestore.Update{{Path: "read", Value: true}}); err != nil {
			logger.Get().Warn().Err(err).Str("notification_id", doc.Ref.ID).Msg("failed to mark notification read")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func decodeNotificationDocs(docs *firestore.DocumentIterator) []models.Notification {
	defer docs.Stop()

	var items []models.Notification
	for {
		doc, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Get().Warn().Err(err).Msg("notification iteration failed, returning partial list")
			break
		}

		var n models.Notification
		if err := doc.DataTo(&n); err != nil {
			logger.Get().Warn().Err(err).Str("notification_id", doc.Ref.ID).Msg("skipping malformed notification document")
			continue
		}
		n.ID = doc.Ref.ID
		if n.CreatedAt.IsZero() {
			n.CreatedAt = doc.CreateTime
		}
		items = append(items, n)
	}
	return items
}
