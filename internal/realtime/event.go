package realtime

// Event types pushed to browsers.
const (
	EventThreadList              = "thread_list"
	EventUnreadCounts            = "unread_counts"
	EventNotifications           = "notifications"
	EventNotificationUnreadCount = "notification_unread_count"
)

// Event is a realtime event sent to a user's WebSocket connections.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Publisher delivers events to every connection of a user. The sync engine
// publishes through this interface so it never depends on the transport.
type Publisher interface {
	Publish(uid string, event *Event)
}

// EngineManager starts and stops per-user sync engines. The hub invokes it
// when the first connection for a user registers and when the last one
// leaves, so Firestore listeners live exactly as long as someone is
// watching.
type EngineManager interface {
	StartEngine(uid string)
	StopEngine(uid string)
}
