package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/chitchat/internal/database"
	"github.com/thereayou/chitchat/internal/handlers/dto"
	"github.com/thereayou/chitchat/internal/middleware"
	"github.com/thereayou/chitchat/internal/models"
	"github.com/thereayou/chitchat/internal/services"
)

const defaultPageSize = 50

type HTTPMessageHandler struct {
	db   *database.Database
	chat *services.ChatService
}

func NewHTTPMessageHandler(db *database.Database, chat *services.ChatService) *HTTPMessageHandler {
	return &HTTPMessageHandler{db: db, chat: chat}
}

// GetRoomMessages страница истории: page=1 самые новые, внутри страницы по возрастанию
func (h *HTTPMessageHandler) GetRoomMessages(c *gin.Context) {
	roomID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := queryInt(c, "page_size", defaultPageSize)
	if !ok {
		return
	}
	if pageSize > database.MaxPageSize {
		pageSize = database.MaxPageSize
	}

	ctx := c.Request.Context()
	messages, err := h.chat.GetRoomMessages(ctx, middleware.CurrentUser(c), roomID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	out, err := h.withSenders(c, messages)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":  out,
		"page":      page,
		"page_size": pageSize,
		"has_more":  len(messages) == pageSize,
	})
}

// SendMessage отправляет сообщение через HTTP (альтернатива WebSocket)
func (h *HTTPMessageHandler) SendMessage(c *gin.Context) {
	roomID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.MessagePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.chat.Send(c.Request.Context(), services.SendInput{
		RoomID:   roomID,
		SenderID: middleware.CurrentUser(c),
		Content:  req.Content,
		Type:     req.Type,
		Metadata: req.Metadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	out, err := h.withSenders(c, []models.Message{*msg})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out[0])
}

// UpdateMessage обновляет сообщение
func (h *HTTPMessageHandler) UpdateMessage(c *gin.Context) {
	messageID, ok := pathInt64(c, "id")
	if !ok {
		return
	}

	var req dto.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.chat.EditMessage(c.Request.Context(), middleware.CurrentUser(c), messageID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	out, err := h.withSenders(c, []models.Message{*msg})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out[0])
}

// DeleteMessage удаляет сообщение
func (h *HTTPMessageHandler) DeleteMessage(c *gin.Context) {
	messageID, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	respondOutcome(c, h.chat.DeleteMessage(c.Request.Context(), middleware.CurrentUser(c), messageID))
}

func (h *HTTPMessageHandler) MarkRead(c *gin.Context) {
	messageID, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	respondOutcome(c, h.chat.MarkRead(c.Request.Context(), middleware.CurrentUser(c), messageID))
}

func (h *HTTPMessageHandler) MarkDelivered(c *gin.Context) {
	messageID, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	respondOutcome(c, h.chat.MarkDelivered(c.Request.Context(), middleware.CurrentUser(c), messageID))
}

// GetRoomUnread оба счётчика: по общему флагу и по статусам получателя
func (h *HTTPMessageHandler) GetRoomUnread(c *gin.Context) {
	roomID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	coarse, err := h.chat.GetUnreadCount(ctx, roomID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	personal, err := h.chat.GetRecipientUnreadCount(ctx, roomID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room_id":          roomID,
		"unread_count":     coarse,
		"recipient_unread": personal,
	})
}

// GetUnread непрочитанные по всем комнатам, где пользователь участник
func (h *HTTPMessageHandler) GetUnread(c *gin.Context) {
	userID := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	messages, err := h.db.GetUnreadForUser(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	rooms, err := h.db.ListRoomsForUser(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	member := make(map[string]bool, len(rooms))
	for _, r := range rooms {
		member[r.ID.String()] = true
	}
	visible := messages[:0]
	for _, m := range messages {
		if member[m.RoomID.String()] {
			visible = append(visible, m)
		}
	}

	out, err := h.withSenders(c, visible)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

func (h *HTTPMessageHandler) withSenders(c *gin.Context, messages []models.Message) ([]dto.MessageResponse, error) {
	senders, err := h.db.GetUsersByIDs(c.Request.Context(), dto.SenderIDs(messages))
	if err != nil {
		return nil, err
	}
	return dto.NewMessageResponses(messages, senders), nil
}

func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

func pathInt64(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}
