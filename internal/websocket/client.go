package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал отправки ping
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 * 1024

	sendQueueSize = 256
)

// MessageType тип кадра протокола
type MessageType string

const (
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"

	// Команды клиента
	TypeRoomJoin      MessageType = "room_join"
	TypeRoomLeave     MessageType = "room_leave"
	TypeMessage       MessageType = "message"
	TypeMessageEdit   MessageType = "message_edit"
	TypeMessageDelete MessageType = "message_delete"
	TypeMessageRead   MessageType = "message_read"

	// Ответы сервера, события комнаты идут с типом EventKind
	TypeRoomJoined MessageType = "room_joined"
	TypeRoomLeft   MessageType = "room_left"
	TypeError      MessageType = "error"
)

type Message struct {
	Type      MessageType     `json:"type"`
	RoomID    *uuid.UUID      `json:"room_id,omitempty"`
	UserID    uuid.UUID       `json:"user_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type ClientMessageHandler interface {
	HandleMessage(ctx context.Context, client *Client, msg *Message) error
}

// Client одно websocket-соединение пользователя со своей Session
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID

	conn    *websocket.Conn
	send    chan []byte
	session *Session
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		ID:     uuid.New(),
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		log:    log,
	}
	c.session = NewSession(hub, userID, c)
	return c
}

func (c *Client) Session() *Session {
	return c.session
}

// Deliver ставит событие комнаты в очередь на отправку.
// Переполненная очередь означает потерю события для этого клиента.
func (c *Client) Deliver(ev Event) {
	roomID := ev.RoomID
	if err := c.SendMessage(MessageType(ev.Kind), &roomID, ev); err != nil {
		c.log.Debug("event not delivered",
			zap.String("client_id", c.ID.String()), zap.String("kind", string(ev.Kind)), zap.Error(err))
	}
}

func (c *Client) SendMessage(msgType MessageType, roomID *uuid.UUID, data any) error {
	msg := Message{
		Type:      msgType,
		RoomID:    roomID,
		UserID:    c.UserID,
		Timestamp: time.Now().UTC(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		msg.Data = raw
	}
	frame, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return ErrClientQueueFull
	}
}

func (c *Client) SendError(errorMsg string) {
	_ = c.SendMessage(TypeError, nil, map[string]string{"error": errorMsg})
}

// Close снимает подписку и закрывает очередь отправки. Повторный вызов ничего не делает.
func (c *Client) Close() {
	c.session.Unsubscribe()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ReadPump читает кадры клиента до ошибки соединения, затем закрывает клиента
func (c *Client) ReadPump(ctx context.Context, handler ClientMessageHandler, onClose func()) {
	defer func() {
		c.Close()
		c.conn.Close()
		if onClose != nil {
			onClose()
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket read failed", zap.String("client_id", c.ID.String()), zap.Error(err))
			}
			return
		}

		msg.UserID = c.UserID

		switch msg.Type {
		case TypePong:
			continue
		case TypePing:
			_ = c.SendMessage(TypePong, nil, nil)
			continue
		}

		if handler == nil {
			continue
		}
		if err := handler.HandleMessage(ctx, c, &msg); err != nil {
			c.log.Debug("command rejected",
				zap.String("client_id", c.ID.String()), zap.String("type", string(msg.Type)), zap.Error(err))
			c.SendError(err.Error())
		}
	}
}

// WritePump отправляет очередь клиенту и пингует соединение
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

			// Отправляем все накопившиеся сообщения
			n := len(c.send)
			for i := 0; i < n; i++ {
				next, ok := <-c.send
				if !ok {
					c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.conn.WriteMessage(websocket.TextMessage, next); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
