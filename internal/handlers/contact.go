package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/chitchat/internal/database"
	"github.com/thereayou/chitchat/internal/handlers/dto"
	"github.com/thereayou/chitchat/internal/middleware"
)

type ContactHandler struct {
	db *database.Database
}

func NewContactHandler(db *database.Database) *ContactHandler {
	return &ContactHandler{db: db}
}

func (h *ContactHandler) ListContacts(c *gin.Context) {
	users, err := h.db.ListContacts(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": dto.NewUserList(users)})
}

func (h *ContactHandler) AddContact(c *gin.Context) {
	var req dto.ParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	friend, err := h.db.GetUserByID(ctx, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if friend == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if err := h.db.AddContact(ctx, middleware.CurrentUser(c), friend.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewUserInfo(friend))
}

func (h *ContactHandler) RemoveContact(c *gin.Context) {
	friendID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	respondOutcome(c, h.db.RemoveContact(c.Request.Context(), middleware.CurrentUser(c), friendID))
}

func (h *ContactHandler) ListBlocked(c *gin.Context) {
	users, err := h.db.ListBlocked(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": dto.NewUserList(users)})
}

func (h *ContactHandler) Block(c *gin.Context) {
	var req dto.ParticipantRequest
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
	respondOutcome(c, h.db.Block(ctx, middleware.CurrentUser(c), target.ID))
}

func (h *ContactHandler) Unblock(c *gin.Context) {
	blockedID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	respondOutcome(c, h.db.Unblock(c.Request.Context(), middleware.CurrentUser(c), blockedID))
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
