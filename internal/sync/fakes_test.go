package sync

import (
	"context"
	stdsync "sync"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/models"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/realtime"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/repositories"
)

// fakeThreadRepo scripts the watch channels and records write calls.
type fakeThreadRepo struct {
	mu stdsync.Mutex

	threadUpdates chan []models.Thread
	threadErrs    chan error

	unread       []models.Message
	markErrs     map[string]error
	marked       []string
	setUnreadLog map[string]int64
	recountErr   error
}

func newFakeThreadRepo() *fakeThreadRepo {
	return &fakeThreadRepo{
		threadUpdates: make(chan []models.Thread, 4),
		threadErrs:    make(chan error, 1),
		markErrs:      map[string]error{},
		setUnreadLog:  map[string]int64{},
	}
}

func (f *fakeThreadRepo) WatchMemberThreads(ctx context.Context, uid string) (<-chan []models.Thread, <-chan error) {
	return f.threadUpdates, f.threadErrs
}

func (f *fakeThreadRepo) ListMemberThreads(ctx context.Context, uid string) ([]models.Thread, error) {
	return nil, nil
}

func (f *fakeThreadRepo) GetThread(ctx context.Context, threadID string) (*models.Thread, error) {
	return nil, repositories.ErrNotFound
}

func (f *fakeThreadRepo) EnsureDirectThread(ctx context.Context, from, to string) (*models.Thread, error) {
	return nil, nil
}

func (f *fakeThreadRepo) CreateGroupThread(ctx context.Context, members []string) (*models.Thread, error) {
	return nil, nil
}

func (f *fakeThreadRepo) AddMessage(ctx context.Context, threadID string, msg *models.Message) (*models.Message, error) {
	return msg, nil
}

func (f *fakeThreadRepo) UpdatePreview(ctx context.Context, threadID string, msg *models.Message, recipients []string) error {
	return nil
}

func (f *fakeThreadRepo) ListMessages(ctx context.Context, threadID string, limit int) ([]models.Message, error) {
	return nil, nil
}

func (f *fakeThreadRepo) ListUnreadMessages(ctx context.Context, threadID, uid string, limit int) ([]models.Message, error) {
	return f.unread, nil
}

func (f *fakeThreadRepo) MarkMessageRead(ctx context.Context, threadID, messageID, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.markErrs[messageID]; ok {
		return err
	}
	f.marked = append(f.marked, messageID)
	return nil
}

func (f *fakeThreadRepo) SetUnread(ctx context.Context, threadID, uid string, count int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setUnreadLog[threadID] = count
	return nil
}

// RecountUnread reports the scripted unread messages not yet marked.
func (f *fakeThreadRepo) RecountUnread(ctx context.Context, threadID, uid string, limit int) (int, error) {
	if f.recountErr != nil {
		return 0, f.recountErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	remaining := 0
	for _, m := range f.unread {
		seen := false
		for _, id := range f.marked {
			if id == m.ID {
				seen = true
				break
			}
		}
		if !seen {
			remaining++
		}
	}
	return remaining, nil
}

// fakeUserRepo serves profiles from a map; everything else is not found.
type fakeUserRepo struct {
	profiles map[string]*models.UserProfile
}

func (f *fakeUserRepo) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	if p, ok := f.profiles[uid]; ok {
		return p, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) GetByHandle(ctx context.Context, handle string) (*models.UserProfile, error) {
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) SearchByHandlePrefix(ctx context.Context, prefix string, limit int) ([]models.UserProfile, error) {
	return nil, nil
}

// fakeNotificationRepo scripts the notification watch channels.
type fakeNotificationRepo struct {
	recent     chan []models.Notification
	recentErrs chan error
	counts     chan int64
	countErrs  chan error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		recent:     make(chan []models.Notification, 4),
		recentErrs: make(chan error, 1),
		counts:     make(chan int64, 4),
		countErrs:  make(chan error, 1),
	}
}

func (f *fakeNotificationRepo) WatchRecent(ctx context.Context, uid string, limit int) (<-chan []models.Notification, <-chan error) {
	return f.recent, f.recentErrs
}

func (f *fakeNotificationRepo) WatchUnreadCount(ctx context.Context, uid string) (<-chan int64, <-chan error) {
	return f.counts, f.countErrs
}

func (f *fakeNotificationRepo) ListRecent(ctx context.Context, uid string, limit int) ([]models.Notification, error) {
	return nil, nil
}

func (f *fakeNotificationRepo) UnreadCount(ctx context.Context, uid string) (int64, error) {
	return 0, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, uid, notificationID string) error {
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, uid string) error {
	return nil
}

// capturePublisher collects published events on a channel.
type capturePublisher struct {
	events chan *realtime.Event
}

func newCapturePublisher() *capturePublisher {
	return &capturePublisher{events: make(chan *realtime.Event, 32)}
}

func (p *capturePublisher) Publish(uid string, event *realtime.Event) {
	p.events <- event
}
