// Package sync holds the per-user realtime synchronization engine: the
// server-side replacement for the browser's Firestore snapshot listeners.
// One engine runs per signed-in user with at least one live connection; all
// of its listeners share one context and die together when the user's last
// connection goes away.
package sync

import (
	"context"
	"errors"
	stdsync "sync"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/models"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/realtime"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/repositories"
)

// UnreadSummary is the payload of an unread_counts event: the per-thread
// unread counts for the viewer plus their sum.
type UnreadSummary struct {
	Threads map[string]int64 `json:"threads"`
	Total   int64            `json:"total"`
}

// ThreadList is the payload of a thread_list event.
type ThreadList struct {
	Threads []models.ThreadView `json:"threads"`
}

// NotificationFeed is the payload of a notifications event.
type NotificationFeed struct {
	Items []models.Notification `json:"items"`
}

// NotificationUnread is the payload of a notification_unread_count event.
// The count covers every unread notification, not just the capped feed.
type NotificationUnread struct {
	Count int64 `json:"count"`
}

// Engine synchronizes one user's threads and notifications.
type Engine struct {
	uid           string
	threads       repositories.ThreadRepository
	users         repositories.UserRepository
	notifications repositories.NotificationRepository
	publisher     realtime.Publisher
	feedSize      int
	log           zerolog.Logger

	cancel context.CancelFunc
	wg     stdsync.WaitGroup

	mu       stdsync.Mutex
	profiles map[string]*models.UserProfile
}

// NewEngine creates an engine for uid. Call Start to open the listeners.
func NewEngine(
	uid string,
	threads repositories.ThreadRepository,
	users repositories.UserRepository,
	notifications repositories.NotificationRepository,
	publisher realtime.Publisher,
	feedSize int,
	log zerolog.Logger,
) *Engine {
	return &Engine{
		uid:           uid,
		threads:       threads,
		users:         users,
		notifications: notifications,
		publisher:     publisher,
		feedSize:      feedSize,
		log:           log.With().Str("user_id", uid).Logger(),
		profiles:      make(map[string]*models.UserProfile),
	}
}

// Start opens the engine's live subscriptions.
func (e *Engine) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	e.wg.Add(3)
	go e.watchThreads(ctx)
	go e.watchNotificationFeed(ctx)
	go e.watchNotificationUnread(ctx)
}

// Stop cancels every subscription the engine holds and waits for the
// listener goroutines to drain. After Stop returns, no further events are
// published for this user.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
}

func (e *Engine) watchThreads(ctx context.Context) {
	defer e.wg.Done()

	updates, errs := e.threads.WatchMemberThreads(ctx, e.uid)
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errs:
			e.logListenerEnd("threads", err)
			return
		case batch, ok := <-updates:
			if !ok {
				return
			}
			e.publishThreads(ctx, batch)
		}
	}
}

// publishThreads recomputes the derived view state for a thread batch:
// sorted list with counterpart profiles, then the unread summary.
func (e *Engine) publishThreads(ctx context.Context, threads []models.Thread) {
	models.SortThreadsByActivity(threads)

	views := make([]models.ThreadView, 0, len(threads))
	summary := UnreadSummary{Threads: make(map[string]int64, len(threads))}

	for _, t := range threads {
		view := models.ThreadView{Thread: t, UnreadCount: t.UnreadFor(e.uid)}
		if other, ok := t.Counterpart(e.uid); ok {
			view.Counterpart = e.resolveProfile(ctx, other)
		}
		views = append(views, view)

		summary.Threads[t.ID] = view.UnreadCount
		summary.Total += view.UnreadCount
	}

	e.publisher.Publish(e.uid, &realtime.Event{Type: realtime.EventThreadList, Payload: ThreadList{Threads: views}})
	e.publisher.Publish(e.uid, &realtime.Event{Type: realtime.EventUnreadCounts, Payload: summary})
}

// resolveProfile looks up a counterpart profile, caching per engine. A
// failed lookup degrades to a placeholder rather than failing the list.
func (e *Engine) resolveProfile(ctx context.Context, uid string) *models.UserProfile {
	e.mu.Lock()
	if p, ok := e.profiles[uid]; ok {
		e.mu.Unlock()
		return p
	}
	e.mu.Unlock()

	p, err := e.users.GetProfile(ctx, uid)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			e.log.Warn().Err(err).Str("counterpart", uid).Msg("counterpart profile lookup failed")
		}
		// Placeholders are not cached so a later batch can retry the lookup.
		return models.PlaceholderProfile(uid)
	}

	e.mu.Lock()
	e.profiles[uid] = p
	e.mu.Unlock()
	return p
}

func (e *Engine) watchNotificationFeed(ctx context.Context) {
	defer e.wg.Done()

	updates, errs := e.notifications.WatchRecent(ctx, e.uid, e.feedSize)
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errs:
			e.logListenerEnd("notifications", err)
			return
		case items, ok := <-updates:
			if !ok {
				return
			}
			e.publisher.Publish(e.uid, &realtime.Event{
				Type:    realtime.EventNotifications,
				Payload: NotificationFeed{Items: items},
			})
		}
	}
}

func (e *Engine) watchNotificationUnread(ctx context.Context) {
	defer e.wg.Done()

	counts, errs := e.notifications.WatchUnreadCount(ctx, e.uid)
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errs:
			e.logListenerEnd("notification unread count", err)
			return
		case count, ok := <-counts:
			if !ok {
				return
			}
			e.publisher.Publish(e.uid, &realtime.Event{
				Type:    realtime.EventNotificationUnreadCount,
				Payload: NotificationUnread{Count: count},
			})
		}
	}
}

// logListenerEnd reports a listener failure. The UI degrades to its last
// delivered state; nothing is retried.
func (e *Engine) logListenerEnd(name string, err error) {
	if err == nil || errors.Is(err, context.Canceled) || status.Code(err) == codes.Canceled {
		return
	}
	e.log.Error().Err(err).Str("listener", name).Msg("live subscription ended")
}
