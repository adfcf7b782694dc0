package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/thereayou/chitchat/internal/config"
	"github.com/thereayou/chitchat/internal/handlers"
	"github.com/thereayou/chitchat/internal/middleware"
	"go.uber.org/zap"
)

type routeHandlers struct {
	auth     *handlers.AuthHandler
	users    *handlers.UserHandler
	rooms    *handlers.RoomHandler
	messages *handlers.HTTPMessageHandler
	contacts *handlers.ContactHandler
	ws       *handlers.WebSocketHandler
}

func APIEndpoints(r *gin.Engine, cfg *config.Config, log *zap.Logger, authn middleware.Authenticator, h routeHandlers) {
	r.Use(gin.Recovery(), requestLogger(log))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	// Auth endpoints
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.auth.Register)
		authGroup.POST("/login", h.auth.Login)
		authGroup.POST("/logout", middleware.AuthMiddleware(authn), h.auth.Logout)
	}

	// API endpoints
	api := r.Group("/api/v1", middleware.AuthMiddleware(authn))
	{
		users := api.Group("/users")
		users.GET("/me", h.users.GetMe)
		users.PUT("/me", h.users.UpdateMe)
		users.GET("/search", h.users.SearchUsers)
		users.GET("/:id", h.users.GetUser)

		rooms := api.Group("/rooms")
		rooms.POST("", h.rooms.CreateRoom)
		rooms.POST("/direct", h.rooms.CreateDirectRoom)
		rooms.GET("", h.rooms.GetMyRooms)
		rooms.GET("/:id", h.rooms.GetRoom)
		rooms.PUT("/:id", h.rooms.UpdateRoom)
		rooms.DELETE("/:id", h.rooms.DeleteRoom)
		rooms.GET("/:id/participants", h.rooms.GetParticipants)
		rooms.POST("/:id/participants", h.rooms.AddParticipant)
		rooms.DELETE("/:id/participants/:user_id", h.rooms.RemoveParticipant)
		rooms.GET("/:id/messages", h.messages.GetRoomMessages)
		rooms.POST("/:id/messages", h.messages.SendMessage)
		rooms.GET("/:id/unread", h.messages.GetRoomUnread)

		messages := api.Group("/messages")
		messages.GET("/unread", h.messages.GetUnread)
		messages.PUT("/:id", h.messages.UpdateMessage)
		messages.DELETE("/:id", h.messages.DeleteMessage)
		messages.POST("/:id/read", h.messages.MarkRead)
		messages.POST("/:id/delivered", h.messages.MarkDelivered)

		contacts := api.Group("/contacts")
		contacts.GET("", h.contacts.ListContacts)
		contacts.POST("", h.contacts.AddContact)
		contacts.DELETE("/:id", h.contacts.RemoveContact)

		blocks := api.Group("/blocks")
		blocks.GET("", h.contacts.ListBlocked)
		blocks.POST("", h.contacts.Block)
		blocks.DELETE("/:id", h.contacts.Unblock)
	}

	r.GET("/ws", middleware.WSAuthMiddleware(authn), h.ws.HandleWebSocket)
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= 500 {
			log.Error("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}
