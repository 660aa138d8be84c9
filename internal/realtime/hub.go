package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisPubSubChannel = "realtime-events"

// Hub manages WebSocket clients and fans events out to them, across
// instances via Redis pub/sub when configured.
type Hub struct {
	// Registered clients grouped by user ID
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *targetedEvent

	engines EngineManager

	mu          sync.RWMutex
	redisClient *redis.Client
	log         zerolog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

type targetedEvent struct {
	UID   string `json:"uid"`
	Event *Event `json:"event"`
}

// NewHub creates a new Hub. redisClient may be nil for single-instance
// deployments.
func NewHub(redisClient *redis.Client, log zerolog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *targetedEvent, 256),
		redisClient: redisClient,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetEngineManager wires the per-user sync engine lifecycle. Must be called
// before Run.
func (h *Hub) SetEngineManager(engines EngineManager) {
	h.engines = engines
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Publish delivers an event to every connection of uid. With Redis
// configured the event goes through pub/sub so every instance delivers to
// its own connections; otherwise delivery is local.
func (h *Hub) Publish(uid string, event *Event) {
	if h.redisClient != nil {
		data, err := json.Marshal(&targetedEvent{UID: uid, Event: event})
		if err != nil {
			h.log.Error().Err(err).Msg("failed to encode realtime event")
			return
		}
		if err := h.redisClient.Publish(h.ctx, redisPubSubChannel, data).Err(); err != nil {
			h.log.Warn().Err(err).Msg("redis publish failed, delivering locally only")
			h.broadcast <- &targetedEvent{UID: uid, Event: event}
		}
		return
	}
	h.broadcast <- &targetedEvent{UID: uid, Event: event}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	if h.redisClient != nil {
		go h.subscribeRedis()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			first := h.clients[client.uid] == nil || len(h.clients[client.uid]) == 0
			if h.clients[client.uid] == nil {
				h.clients[client.uid] = make(map[*Client]bool)
			}
			h.clients[client.uid][client] = true
			h.mu.Unlock()

			if first && h.engines != nil {
				h.engines.StartEngine(client.uid)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			last := false
			if conns, ok := h.clients[client.uid]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.send)
				}
				if len(conns) == 0 {
					delete(h.clients, client.uid)
					last = true
				}
			}
			h.mu.Unlock()

			if last && h.engines != nil {
				h.engines.StopEngine(client.uid)
			}

		case te := <-h.broadcast:
			h.deliver(te)
		}
	}
}

// Shutdown stops the hub loop and the Redis subscription.
func (h *Hub) Shutdown() {
	h.cancel()
}

func (h *Hub) deliver(te *targetedEvent) {
	data, err := json.Marshal(te.Event)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to encode realtime event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients[te.UID] {
		select {
		case client.send <- data:
		default:
			// Slow consumer; drop the connection rather than block the hub.
			close(client.send)
			delete(h.clients[te.UID], client)
		}
	}
}

func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var te targetedEvent
			if err := json.Unmarshal([]byte(msg.Payload), &te); err != nil {
				h.log.Warn().Err(err).Msg("dropping malformed realtime event from redis")
				continue
			}
			h.deliver(&te)
		}
	}
}
