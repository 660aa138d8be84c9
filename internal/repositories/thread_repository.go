package repositories

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/models"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/pkg/logger"
)

// ThreadRepository defines the interface for thread and message operations.
type ThreadRepository interface {
	WatchMemberThreads(ctx context.Context, uid string) (<-chan []models.Thread, <-chan error)
	ListMemberThreads(ctx context.Context, uid string) ([]models.Thread, error)
	GetThread(ctx context.Context, threadID string) (*models.Thread, error)
	EnsureDirectThread(ctx context.Context, from, to string) (*models.Thread, error)
	CreateGroupThread(ctx context.Context, members []string) (*models.Thread, error)
	AddMessage(ctx context.Context, threadID string, msg *models.Message) (*models.Message, error)
	UpdatePreview(ctx context.Context, threadID string, msg *models.Message, recipients []string) error
	ListMessages(ctx context.Context, threadID string, limit int) ([]models.Message, error)
	ListUnreadMessages(ctx context.Context, threadID, uid string, limit int) ([]models.Message, error)
	MarkMessageRead(ctx context.Context, threadID, messageID, uid string) error
	SetUnread(ctx context.Context, threadID, uid string, count int64) error
	RecountUnread(ctx context.Context, threadID, uid string, limit int) (int, error)
}

// FirestoreThreadRepository implements ThreadRepository over the hosted
// `threads` collection and its `messages` sub-collections.
type FirestoreThreadRepository struct {
	client *firestore.Client
}

// NewFirestoreThreadRepository creates a new FirestoreThreadRepository.
func NewFirestoreThreadRepository(client *firestore.Client) *FirestoreThreadRepository {
	return &FirestoreThreadRepository{client: client}
}

func (r *FirestoreThreadRepository) threads() *firestore.CollectionRef {
	return r.client.Collection(colThreads)
}

func (r *FirestoreThreadRepository) messages(threadID string) *firestore.CollectionRef {
	return r.threads().Doc(threadID).Collection(colMessages)
}

// WatchMemberThreads opens a live query over all threads containing uid.
// Each delivered batch is the full, normalized set of the user's threads.
// The subscription ends when ctx is cancelled; the final error (including
// cancellation) is delivered on the error channel.
func (r *FirestoreThreadRepository) WatchMemberThreads(ctx context.Context, uid string) (<-chan []models.Thread, <-chan error) {
	updates := make(chan []models.Thread)
	errc := make(chan error, 1)

	go func() {
		defer close(updates)
		it := r.threads().Where("members", "array-contains", uid).Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				errc <- err
				return
			}
			threads := decodeThreadDocs(snap.Documents)
			select {
			case updates <- threads:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()

	return updates, errc
}

// ListMemberThreads is the one-shot variant of WatchMemberThreads, used for
// the initial REST load.
func (r *FirestoreThreadRepository) ListMemberThreads(ctx context.Context, uid string) ([]models.Thread, error) {
	docs := r.threads().Where("members", "array-contains", uid).Documents(ctx)
	return decodeThreadDocs(docs), nil
}

// GetThread fetches a single thread by ID.
func (r *FirestoreThreadRepository) GetThread(ctx context.Context, threadID string) (*models.Thread, error) {
	doc, err := r.threads().Doc(threadID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t, err := decodeThread(doc)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// EnsureDirectThread resolves or creates the direct thread between two
// users. The document ID is derived from the sorted member pair, so
// concurrent first messages from both sides land on the same document and
// exactly one thread exists per pair.
func (r *FirestoreThreadRepository) EnsureDirectThread(ctx context.Context, from, to string) (*models.Thread, error) {
	if from == to {
		return nil, fmt.Errorf("cannot open a direct thread with yourself")
	}

	id := models.DirectThreadID(from, to)
	ref := r.threads().Doc(id)

	thread := models.Thread{
		Type:         models.ThreadTypeDirect,
		Members:      []string{from, to},
		UnreadCounts: map[string]int64{from: 0, to: 0},
		CreatedAt:    time.Now().UTC(),
	}

	_, err := ref.Create(ctx, thread)
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return nil, fmt.Errorf("create direct thread: %w", err)
	}

	doc, err := ref.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load direct thread: %w", err)
	}
	return decodeThread(doc)
}

// CreateGroupThread creates a group thread with a random document ID.
func (r *FirestoreThreadRepository) CreateGroupThread(ctx context.Context, members []string) (*models.Thread, error) {
	if len(members) < 2 {
		return nil, fmt.Errorf("a group thread needs at least two members")
	}

	counts := make(map[string]int64, len(members))
	for _, m := range members {
		counts[m] = 0
	}

	thread := models.Thread{
		Type:         models.ThreadTypeGroup,
		Members:      members,
		UnreadCounts: counts,
		CreatedAt:    time.Now().UTC(),
	}

	ref := r.threads().Doc(uuid.NewString())
	if _, err := ref.Create(ctx, thread); err != nil {
		return nil, fmt.Errorf("create group thread: %w", err)
	}

	thread.ID = ref.ID
	return &thread, nil
}

// AddMessage appends a message to the thread's sub-collection with the
// sender pre-acknowledged in readBy.
func (r *FirestoreThreadRepository) AddMessage(ctx context.Context, threadID string, msg *models.Message) (*models.Message, error) {
	msg.ThreadID = threadID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if len(msg.ReadBy) == 0 {
		msg.ReadBy = []string{msg.SenderID}
	}

	ref, _, err := r.messages(threadID).Add(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("add message: %w", err)
	}
	msg.ID = ref.ID
	return msg, nil
}

// UpdatePreview refreshes the thread's last-message fields and increments
// the recipients' unread counts in a single document update. The coupling
// with AddMessage is best-effort: if this update is lost, the preview lags
// until the next message.
func (r *FirestoreThreadRepository) UpdatePreview(ctx context.Context, threadID string, msg *models.Message, recipients []string) error {
	updates := []firestore.Update{
		{Path: "lastMessage", Value: msg.Text},
		{Path: "lastMessageSenderId", Value: msg.SenderID},
		{Path: "lastMessageAt", Value: msg.CreatedAt},
	}
	for _, uid := range recipients {
		if uid == msg.SenderID {
			continue
		}
		updates = append(updates, firestore.Update{
			FieldPath: firestore.FieldPath{"unreadCounts", uid},
			Value:     firestore.Increment(1),
		})
	}

	if _, err := r.threads().Doc(threadID).Update(ctx, updates); err != nil {
		return fmt.Errorf("update thread preview: %w", err)
	}
	return nil
}

// ListMessages returns the newest messages of a thread, oldest first.
func (r *FirestoreThreadRepository) ListMessages(ctx context.Context, threadID string, limit int) ([]models.Message, error) {
	docs := r.messages(threadID).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)

	msgs, err := decodeMessageDocs(threadID, docs)
	if err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// ListUnreadMessages returns the messages of a thread that count as unread
// for uid. Firestore cannot express "readBy does not contain", so the
// negative filter runs in memory over the newest page.
func (r *FirestoreThreadRepository) ListUnreadMessages(ctx context.Context, threadID, uid string, limit int) ([]models.Message, error) {
	msgs, err := r.ListMessages(ctx, threadID, limit)
	if err != nil {
		return nil, err
	}

	unread := msgs[:0]
	for _, m := range msgs {
		if m.UnreadFor(uid) {
			unread = append(unread, m)
		}
	}
	return unread, nil
}

// MarkMessageRead appends uid to a message's read-by set. ArrayUnion keeps
// the set monotonic: readers are only ever added.
func (r *FirestoreThreadRepository) MarkMessageRead(ctx context.Context, threadID, messageID, uid string) error {
	_, err := r.messages(threadID).Doc(messageID).Update(ctx, []firestore.Update{
		{Path: "readBy", Value: firestore.ArrayUnion(uid)},
	})
	if err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return nil
}

// SetUnread writes the denormalized unread count for uid on a thread.
func (r *FirestoreThreadRepository) SetUnread(ctx context.Context, threadID, uid string, count int64) error {
	_, err := r.threads().Doc(threadID).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"unreadCounts", uid}, Value: count},
	})
	if err != nil {
		return fmt.Errorf("set unread count: %w", err)
	}
	return nil
}

// RecountUnread recomputes the unread count from the message sub-collection.
// Used to reconcile the denormalized counter when a thread is opened.
func (r *FirestoreThreadRepository) RecountUnread(ctx context.Context, threadID, uid string, limit int) (int, error) {
	msgs, err := r.ListUnreadMessages(ctx, threadID, uid, limit)
	if err != nil {
		return 0, err
	}
	return len(msgs), nil
}

func decodeThreadDocs(docs *firestore.DocumentIterator) []models.Thread {
	defer docs.Stop()

	var threads []models.Thread
	for {
		doc, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Get().Warn().Err(err).Msg("thread iteration failed, returning partial list")
			break
		}
		t, err := decodeThread(doc)
		if err != nil {
			logger.Get().Warn().Err(err).Str("thread_id", doc.Ref.ID).Msg("skipping malformed thread document")
			continue
		}
		threads = append(threads, *t)
	}
	return threads
}

// decodeThread normalizes a thread document once at the boundary so read
// sites can rely on the struct invariants.
func decodeThread(doc *firestore.DocumentSnapshot) (*models.Thread, error) {
	var t models.Thread
	if err := doc.DataTo(&t); err != nil {
		return nil, fmt.Errorf("decode thread: %w", err)
	}
	t.ID = doc.Ref.ID

	if len(t.Members) < 2 {
		return nil, fmt.Errorf("thread has %d members, want at least 2", len(t.Members))
	}
	if t.Type == "" {
		if len(t.Members) == 2 {
			t.Type = models.ThreadTypeDirect
		} else {
			t.Type = models.ThreadTypeGroup
		}
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = doc.CreateTime
	}
	if t.UnreadCounts == nil {
		t.UnreadCounts = map[string]int64{}
	}
	return &t, nil
}

func decodeMessageDocs(threadID string, docs *firestore.DocumentIterator) ([]models.Message, error) {
	defer docs.Stop()

	var msgs []models.Message
	for {
		doc, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate messages: %w", err)
		}

		var m models.Message
		if err := doc.DataTo(&m); err != nil {
			logger.Get().Warn().Err(err).Str("message_id", doc.Ref.ID).Msg("skipping malformed message document")
			continue
		}
		m.ID = doc.Ref.ID
		m.ThreadID = threadID
		if m.CreatedAt.IsZero() {
			m.CreatedAt = doc.CreateTime
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
