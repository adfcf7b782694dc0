package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/thereayou/chitchat/internal/database"
	"github.com/thereayou/chitchat/internal/middleware"
	ws "github.com/thereayou/chitchat/internal/websocket"
	"go.uber.org/zap"
)

// WebSocketHandler управляет WebSocket соединениями
type WebSocketHandler struct {
	hub            *ws.Hub
	messageHandler *MessageHandler
	db             *database.Database
	log            *zap.Logger
	upgrader       websocket.Upgrader
}

// NewWebSocketHandler создает новый WebSocket handler.
// Пустой allowedOrigins пропускает любой origin.
func NewWebSocketHandler(hub *ws.Hub, messageHandler *MessageHandler, db *database.Database, allowedOrigins []string, log *zap.Logger) *WebSocketHandler {
	if log == nil {
		log = zap.NewNop()
	}
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &WebSocketHandler{
		hub:            hub,
		messageHandler: messageHandler,
		db:             db,
		log:            log.Named("ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// HandleWebSocket обрабатывает WebSocket соединения
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := middleware.CurrentUser(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debug("upgrade failed", zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn, userID, h.log)
	if h.hub.Connect(userID) {
		h.setPresence(userID, true)
	}
	h.log.Info("client connected",
		zap.String("client_id", client.ID.String()), zap.String("user_id", userID.String()))

	onClose := func() {
		if h.hub.Disconnect(userID) {
			h.setPresence(userID, false)
		}
		h.log.Info("client disconnected",
			zap.String("client_id", client.ID.String()), zap.String("user_id", userID.String()))
	}

	// насосы живут дольше запроса
	go client.WritePump()
	go client.ReadPump(context.Background(), h.messageHandler, onClose)
}

func (h *WebSocketHandler) setPresence(userID uuid.UUID, online bool) {
	if h.db == nil {
		return
	}
	if err := h.db.SetOnline(context.Background(), userID, online); err != nil {
		h.log.Warn("presence update failed",
			zap.String("user_id", userID.String()), zap.Bool("online", online), zap.Error(err))
	}
}
