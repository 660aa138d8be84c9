package sync

import (
	stdsync "sync"

	"github.com/rs/zerolog"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/realtime"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/repositories"
)

// Manager owns the per-user engines. It implements realtime.EngineManager:
// the hub starts an engine when a user's first connection registers and
// stops it when their last one leaves.
type Manager struct {
	threads       repositories.ThreadRepository
	users         repositories.UserRepository
	notifications repositories.NotificationRepository
	publisher     realtime.Publisher
	feedSize      int
	log           zerolog.Logger

	mu      stdsync.Mutex
	engines map[string]*Engine
}

// NewManager creates a Manager.
func NewManager(
	threads repositories.ThreadRepository,
	users repositories.UserRepository,
	notifications repositories.NotificationRepository,
	publisher realtime.Publisher,
	feedSize int,
	log zerolog.Logger,
) *Manager {
	return &Manager{
		threads:       threads,
		users:         users,
		notifications: notifications,
		publisher:     publisher,
		feedSize:      feedSize,
		log:           log,
		engines:       make(map[string]*Engine),
	}
}

// StartEngine starts the sync engine for uid if it is not already running.
func (m *Manager) StartEngine(uid string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.engines[uid]; ok {
		return
	}

	engine := NewEngine(uid, m.threads, m.users, m.notifications, m.publisher, m.feedSize, m.log)
	m.engines[uid] = engine
	engine.Start()
	m.log.Debug().Str("user_id", uid).Msg("sync engine started")
}

// StopEngine stops and removes the engine for uid.
func (m *Manager) StopEngine(uid string) {
	m.mu.Lock()
	engine, ok := m.engines[uid]
	if ok {
		delete(m.engines, uid)
	}
	m.mu.Unlock()

	if ok {
		engine.Stop()
		m.log.Debug().Str("user_id", uid).Msg("sync engine stopped")
	}
}

// Shutdown stops every running engine.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	engines := make([]*Engine, 0, len(m.engines))
	for uid, e := range m.engines {
		engines = append(engines, e)
		delete(m.engines, uid)
	}
	m.mu.Unlock()

	for _, e := range engines {
		e.Stop()
	}
}
