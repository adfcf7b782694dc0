package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Subscription хэндл регистрации слушателя в теме
type Subscription struct {
	Topic string
	id    uint64
}

// Hub реестр тем комнат и их слушателей, плюс учёт онлайн-соединений.
// Publish работает по снимку множества слушателей.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[uint64]Listener
	nextID uint64

	// Количество открытых соединений на пользователя
	connections map[uuid.UUID]int

	log *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		topics:      make(map[string]map[uint64]Listener),
		connections: make(map[uuid.UUID]int),
		log:         log,
	}
}

func (h *Hub) Subscribe(topic string, l Listener) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	set, ok := h.topics[topic]
	if !ok {
		set = make(map[uint64]Listener)
		h.topics[topic] = set
	}
	set[h.nextID] = l
	return Subscription{Topic: topic, id: h.nextID}
}

// Unsubscribe false, если подписки уже нет
func (h *Hub) Unsubscribe(sub Subscription) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.topics[sub.Topic]
	if !ok {
		return false
	}
	if _, ok := set[sub.id]; !ok {
		return false
	}
	delete(set, sub.id)
	if len(set) == 0 {
		delete(h.topics, sub.Topic)
	}
	return true
}

// Publish доставляет событие текущим слушателям темы.
// Если слушателей нет, событие отбрасывается.
func (h *Hub) Publish(ctx context.Context, topic string, ev Event) error {
	listeners := h.snapshot(topic)
	if len(listeners) == 0 {
		h.log.Debug("event dropped, no subscribers", zap.String("topic", topic), zap.String("kind", string(ev.Kind)))
		return nil
	}
	for _, l := range listeners {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.Deliver(ev)
	}
	return nil
}

func (h *Hub) snapshot(topic string) []Listener {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.topics[topic]
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, set[id])
	}
	return out
}

func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Connect true для первого соединения пользователя
func (h *Hub) Connect(userID uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[userID]++
	return h.connections[userID] == 1
}

// Disconnect true, когда закрыто последнее соединение пользователя
func (h *Hub) Disconnect(userID uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	n, ok := h.connections[userID]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(h.connections, userID)
		return true
	}
	h.connections[userID] = n - 1
	return false
}

// GetOnlineUsers возвращает список онлайн пользователей
func (h *Hub) GetOnlineUsers() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]uuid.UUID, 0, len(h.connections))
	for userID := range h.connections {
		users = append(users, userID)
	}
	return users
}
