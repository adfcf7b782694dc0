package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/chitchat/internal/database"
	"github.com/thereayou/chitchat/internal/handlers/dto"
	"github.com/thereayou/chitchat/internal/middleware"
	"github.com/thereayou/chitchat/internal/models"
	"github.com/thereayou/chitchat/internal/services"
	"github.com/thereayou/chitchat/internal/websocket"
)

type RoomHandler struct {
	db  *database.Database
	hub *websocket.Hub
}

func NewRoomHandler(db *database.Database, hub *websocket.Hub) *RoomHandler {
	return &RoomHandler{db: db, hub: hub}
}

// CreateRoom создает комнату вместе с участниками; создатель добавляется всегда
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID := middleware.CurrentUser(c)

	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room := &models.Room{
		Name:      req.Name,
		IsGroup:   req.IsGroup,
		CreatedBy: userID,
	}
	members := append([]uuid.UUID{userID}, req.MemberIDs...)
	if err := h.db.CreateRoomWithParticipants(c.Request.Context(), room, members); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewRoomResponse(room))
}

// CreateDirectRoom создает или получает direct комнату между двумя пользователями
func (h *RoomHandler) CreateDirectRoom(c *gin.Context) {
	userID := middleware.CurrentUser(c)

	var req dto.DirectRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	target, err := h.db.GetUserByID(ctx, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	room, err := h.db.GetOrCreateDirectRoom(ctx, userID, target.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRoomResponse(room))
}

// GetMyRooms список комнат пользователя с числом непрочитанных
func (h *RoomHandler) GetMyRooms(c *gin.Context) {
	userID := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	rooms, err := h.db.ListRoomsForUser(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.RoomResponse, 0, len(rooms))
	for i := range rooms {
		resp := dto.NewRoomResponse(&rooms[i])
		unread, err := h.db.GetRecipientUnreadCount(ctx, rooms[i].ID, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		resp.UnreadCount = &unread
		out = append(out, resp)
	}

	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

// GetRoom получает информацию о конкретной комнате
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, ok := h.memberRoom(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewRoomResponse(room))
}

// UpdateRoom переименование, только для создателя групповой комнаты
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	room, ok := h.memberRoom(c)
	if !ok {
		return
	}
	if room.CreatedBy != middleware.CurrentUser(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only room creator can update room"})
		return
	}

	var req dto.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room.Name = req.Name
	if err := h.db.UpdateRoom(c.Request.Context(), room); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRoomResponse(room))
}

// DeleteRoom мягкое удаление, только создатель
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	room, ok := h.memberRoom(c)
	if !ok {
		return
	}
	if room.CreatedBy != middleware.CurrentUser(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only room creator can delete room"})
		return
	}
	respondOutcome(c, h.db.DeleteRoom(c.Request.Context(), room.ID))
}

// AddParticipant добавить может любой участник комнаты
func (h *RoomHandler) AddParticipant(c *gin.Context) {
	room, ok := h.memberRoom(c)
	if !ok {
		return
	}

	var req dto.ParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	user, err := h.db.GetUserByID(ctx, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	respondOutcome(c, h.db.AddParticipant(ctx, room.ID, user.ID))
}

// RemoveParticipant участник может выйти сам, остальных удаляет создатель
func (h *RoomHandler) RemoveParticipant(c *gin.Context) {
	room, ok := h.memberRoom(c)
	if !ok {
		return
	}
	target, ok := pathUUID(c, "user_id")
	if !ok {
		return
	}

	userID := middleware.CurrentUser(c)
	if target != userID && room.CreatedBy != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only room creator can remove other participants"})
		return
	}

	respondOutcome(c, h.db.RemoveParticipant(c.Request.Context(), room.ID, target))
}

// GetParticipants получает список участников комнаты
func (h *RoomHandler) GetParticipants(c *gin.Context) {
	room, ok := h.memberRoom(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	participants, err := h.db.ListParticipants(ctx, room.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
	}
	users, err := h.db.GetUsersByIDs(ctx, ids)
	if err != nil {
		respondError(c, err)
		return
	}

	online := make(map[uuid.UUID]bool)
	for _, id := range h.hub.GetOnlineUsers() {
		online[id] = true
	}

	out := make([]dto.ParticipantResponse, 0, len(participants))
	for _, p := range participants {
		info := dto.UnknownUser(p.UserID)
		if u, ok := users[p.UserID]; ok {
			info = dto.NewUserInfo(&u)
		}
		info.Online = online[p.UserID]
		out = append(out, dto.ParticipantResponse{
			User:      info,
			JoinedAt:  p.JoinedAt,
			IsCreator: p.UserID == room.CreatedBy,
		})
	}

	c.JSON(http.StatusOK, gin.H{"participants": out})
}

// memberRoom загружает комнату из :id и проверяет членство текущего пользователя
func (h *RoomHandler) memberRoom(c *gin.Context) (*models.Room, bool) {
	roomID, ok := pathUUID(c, "id")
	if !ok {
		return nil, false
	}

	ctx := c.Request.Context()
	room, err := h.db.GetRoom(ctx, roomID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if room == nil || room.IsDeleted {
		respondError(c, services.ErrNotFound)
		return nil, false
	}

	member, err := h.db.IsMember(ctx, roomID, middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if !member {
		respondError(c, services.ErrNotMember)
		return nil, false
	}
	return room, true
}
