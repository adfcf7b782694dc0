package websocket

import (
	"sync"

	"github.com/google/uuid"
)

// Session подписка одного соединения: не больше одной комнаты одновременно.
// Unsubscribed -> Subscribed(room) -> Unsubscribed
type Session struct {
	mu       sync.Mutex
	hub      *Hub
	userID   uuid.UUID
	listener Listener

	room uuid.UUID
	sub  *Subscription
}

func NewSession(hub *Hub, userID uuid.UUID, l Listener) *Session {
	return &Session{hub: hub, userID: userID, listener: l}
}

func (s *Session) UserID() uuid.UUID {
	return s.userID
}

// Subscribe переключает сессию на комнату, снимая предыдущую подписку
func (s *Session) Subscribe(roomID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub != nil && s.room == roomID {
		return
	}
	s.unsubscribeLocked()

	sub := s.hub.Subscribe(RoomTopic(roomID), s.listener)
	s.sub = &sub
	s.room = roomID
}

// Unsubscribe идемпотентен
func (s *Session) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribeLocked()
}

func (s *Session) unsubscribeLocked() {
	if s.sub == nil {
		return
	}
	s.hub.Unsubscribe(*s.sub)
	s.sub = nil
	s.room = uuid.Nil
}

// Room текущая комната, false если подписки нет
func (s *Session) Room() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room, s.sub != nil
}
