package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/thereayou/chitchat/internal/config"
	"github.com/thereayou/chitchat/internal/database"
	"github.com/thereayou/chitchat/internal/handlers"
	"github.com/thereayou/chitchat/internal/services"
	"github.com/thereayou/chitchat/internal/websocket"
	"github.com/thereayou/chitchat/pkg/auth"
	"go.uber.org/zap"
)

type Server struct {
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Hub        *websocket.Hub

	cfg    *config.Config
	log    *zap.Logger
	cancel context.CancelFunc
}

// NewServer поднимает хранилище, redis (если задан) и собирает обработчики
func NewServer(cfg *config.Config, log *zap.Logger) (*Server, error) {
	dbConn, err := database.Connect(cfg.DBDriver, cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("database connect: %w", err)
	}
	return newServer(cfg, log, dbConn)
}

// newServer при ошибке закрывает всё, что успело открыться, включая dbConn
func newServer(cfg *config.Config, log *zap.Logger, dbConn *database.Database) (_ *Server, err error) {
	ctx, cancel := context.WithCancel(context.Background())
	var rdb *redis.Client
	defer func() {
		if err == nil {
			return
		}
		cancel()
		if rdb != nil {
			_ = rdb.Close()
		}
		_ = dbConn.Close()
	}()

	n, rerr := dbConn.ReconcileOrphanRooms(ctx, cfg.OrphanRoomGrace)
	if rerr != nil {
		log.Warn("orphan room reconciliation failed", zap.Error(rerr))
	} else if n > 0 {
		log.Info("orphan rooms removed", zap.Int64("count", n))
	}

	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(redisOpts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis connect: %w", err)
		}
	} else {
		log.Warn("REDIS_URL not set: token blacklist and cross-instance relay disabled")
	}

	hub := websocket.NewHub(log)

	var events websocket.Publisher = hub
	if rdb != nil {
		relay := websocket.NewRedisRelay(rdb, hub, log)
		if err := relay.Start(ctx); err != nil {
			return nil, err
		}
		events = relay
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := services.NewAuthService(dbConn, jwtMgr, rdb, log)
	chatSvc := services.NewChatService(dbConn, events, log)

	msgHandler := handlers.NewMessageHandler(dbConn, chatSvc)
	h := routeHandlers{
		auth:     handlers.NewAuthHandler(authSvc),
		users:    handlers.NewUserHandler(dbConn),
		rooms:    handlers.NewRoomHandler(dbConn, hub),
		messages: handlers.NewHTTPMessageHandler(dbConn, chatSvc),
		contacts: handlers.NewContactHandler(dbConn),
		ws:       handlers.NewWebSocketHandler(hub, msgHandler, dbConn, cfg.CORSOrigins, log),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	APIEndpoints(router, cfg, log, authSvc, h)

	return &Server{
		Router:     router,
		DB:         dbConn,
		Redis:      rdb,
		JWTManager: jwtMgr,
		Hub:        hub,
		cfg:        cfg,
		log:        log,
		cancel:     cancel,
	}, nil
}

// Run слушает порт до отмены ctx, затем корректно останавливает сервер
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("port", s.cfg.Port), zap.String("env", s.cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.close()
	return err
}

func (s *Server) close() {
	s.cancel()
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.log.Warn("redis close failed", zap.Error(err))
		}
	}
	if err := s.DB.Close(); err != nil {
		s.log.Warn("database close failed", zap.Error(err))
	}
}
