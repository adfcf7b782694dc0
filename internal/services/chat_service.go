package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/chitchat/internal/database"
	"github.com/thereayou/chitchat/internal/models"
	"github.com/thereayou/chitchat/internal/websocket"
	"github.com/thereayou/chitchat/pkg/keymutex"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ChatService пишет сообщения в хранилище и публикует события комнаты.
// Запись и публикация в одной комнате идут под общим замком, поэтому
// подписчики видят события в порядке фиксации.
type ChatService struct {
	store  ChatStore
	events websocket.Publisher
	log    *zap.Logger
	rooms  *keymutex.KeyMutex
}

func NewChatService(store ChatStore, events websocket.Publisher, log *zap.Logger) *ChatService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatService{
		store:  store,
		events: events,
		log:    log.Named("chat"),
		rooms:  keymutex.New(),
	}
}

type SendInput struct {
	RoomID   uuid.UUID
	SenderID uuid.UUID
	Content  string
	Type     models.MessageType
	Metadata datatypes.JSON
}

// Send строгий вариант: возвращает сохранённое сообщение или ошибку
func (s *ChatService) Send(ctx context.Context, in SendInput) (*models.Message, error) {
	if err := s.requireMember(ctx, in.RoomID, in.SenderID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		RoomID:   in.RoomID,
		SenderID: in.SenderID,
		Content:  strings.TrimSpace(in.Content),
		Type:     in.Type,
		Metadata: in.Metadata,
	}

	unlock := s.rooms.Lock(in.RoomID.String())
	defer unlock()

	if err := s.store.SendMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.publish(ctx, websocket.NewMessageEvent(websocket.EventMessageReceived, msg))
	return msg, nil
}

// SendMessage булев контракт поверх Send
func (s *ChatService) SendMessage(ctx context.Context, senderID, roomID uuid.UUID, content string, typ models.MessageType) bool {
	_, err := s.Send(ctx, SendInput{RoomID: roomID, SenderID: senderID, Content: content, Type: typ})
	if err != nil {
		s.log.Warn("send message failed",
			zap.String("room_id", roomID.String()), zap.String("sender_id", senderID.String()), zap.Error(err))
		return false
	}
	return true
}

func (s *ChatService) GetRoomMessages(ctx context.Context, userID, roomID uuid.UUID, page, pageSize int) ([]models.Message, error) {
	if err := s.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}
	return s.store.GetMessagesForRoom(ctx, roomID, page, pageSize)
}

// EditMessage меняет текст. Редактировать может только отправитель.
// Сообщение перечитывается под замком комнаты, чтобы не затереть параллельное прочтение.
func (s *ChatService) EditMessage(ctx context.Context, userID uuid.UUID, messageID int64, content string) (*models.Message, error) {
	found, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}

	unlock := s.rooms.Lock(found.RoomID.String())
	defer unlock()

	msg, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrNotFound
	}
	if msg.SenderID != userID {
		return nil, ErrForbidden
	}

	edited := time.Now().UTC()
	msg.Content = strings.TrimSpace(content)
	msg.EditedAt = &edited
	if err := s.store.UpdateMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.publish(ctx, websocket.NewMessageEvent(websocket.EventMessageUpdated, msg))
	return msg, nil
}

// DeleteMessage удаляет сообщение отправителя; ошибки только в Outcome
func (s *ChatService) DeleteMessage(ctx context.Context, userID uuid.UUID, messageID int64) database.Outcome {
	fields := []zap.Field{zap.Int64("message_id", messageID), zap.String("user_id", userID.String())}

	msg, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return s.fail("delete message", err, fields...)
	}
	if msg == nil {
		return s.fail("delete message", ErrNotFound, fields...)
	}
	if msg.SenderID != userID {
		return s.fail("delete message", ErrForbidden, fields...)
	}

	unlock := s.rooms.Lock(msg.RoomID.String())
	defer unlock()

	out := s.store.DeleteMessage(ctx, messageID)
	if !out.OK {
		return out
	}
	s.publish(ctx, websocket.NewDeletedEvent(msg.RoomID, messageID))
	return out
}

// MarkRead отмечает чужое сообщение прочитанным для userID и рассылает обновление
func (s *ChatService) MarkRead(ctx context.Context, userID uuid.UUID, messageID int64) database.Outcome {
	fields := []zap.Field{zap.Int64("message_id", messageID), zap.String("user_id", userID.String())}

	msg, err := s.recipientMessage(ctx, userID, messageID)
	if err != nil {
		return s.fail("mark read", err, fields...)
	}

	unlock := s.rooms.Lock(msg.RoomID.String())
	defer unlock()

	out := s.store.MarkRead(ctx, messageID, userID)
	if !out.OK {
		return out
	}

	updated, err := s.store.GetMessage(ctx, messageID)
	if err != nil || updated == nil {
		s.log.Warn("reload after mark read failed", append(fields, zap.Error(err))...)
		return out
	}
	s.publish(ctx, websocket.NewMessageEvent(websocket.EventMessageUpdated, updated))
	return out
}

// MarkDelivered только строка статуса, is_read не трогается
func (s *ChatService) MarkDelivered(ctx context.Context, userID uuid.UUID, messageID int64) database.Outcome {
	msg, err := s.recipientMessage(ctx, userID, messageID)
	if err != nil {
		return s.fail("mark delivered", err, zap.Int64("message_id", messageID), zap.String("user_id", userID.String()))
	}
	return s.store.MarkDelivered(ctx, msg.ID, userID)
}

// GetUnreadCount грубый счётчик по общему флагу is_read, только для участника
func (s *ChatService) GetUnreadCount(ctx context.Context, roomID, userID uuid.UUID) (int64, error) {
	if err := s.requireMember(ctx, roomID, userID); err != nil {
		return 0, err
	}
	return s.store.GetUnreadCount(ctx, roomID, userID)
}

// GetRecipientUnreadCount счётчик по статусам конкретного получателя, только для участника
func (s *ChatService) GetRecipientUnreadCount(ctx context.Context, roomID, userID uuid.UUID) (int64, error) {
	if err := s.requireMember(ctx, roomID, userID); err != nil {
		return 0, err
	}
	return s.store.GetRecipientUnreadCount(ctx, roomID, userID)
}

func (s *ChatService) recipientMessage(ctx context.Context, userID uuid.UUID, messageID int64) (*models.Message, error) {
	msg, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrNotFound
	}
	if msg.SenderID == userID {
		return nil, ErrForbidden
	}
	if err := s.requireMember(ctx, msg.RoomID, userID); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *ChatService) requireMember(ctx context.Context, roomID, userID uuid.UUID) error {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil || room.IsDeleted {
		return ErrNotFound
	}
	ok, err := s.store.IsMember(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}

func (s *ChatService) publish(ctx context.Context, ev websocket.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, websocket.RoomTopic(ev.RoomID), ev); err != nil {
		s.log.Warn("publish event failed",
			zap.String("room_id", ev.RoomID.String()), zap.String("kind", string(ev.Kind)), zap.Error(err))
	}
}

func (s *ChatService) fail(op string, cause error, fields ...zap.Field) database.Outcome {
	s.log.Warn(op+" failed", append(fields, zap.Error(cause))...)
	return database.Outcome{Cause: cause}
}
