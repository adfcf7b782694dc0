package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisRelay публикует события комнат в redis, а входящие раздаёт локальному Hub.
// Каждый инстанс, включая отправителя, получает событие ровно из redis.
type RedisRelay struct {
	rdb *redis.Client
	hub *Hub
	log *zap.Logger
}

func NewRedisRelay(rdb *redis.Client, hub *Hub, log *zap.Logger) *RedisRelay {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisRelay{rdb: rdb, hub: hub, log: log.Named("relay")}
}

func (r *RedisRelay) Publish(ctx context.Context, topic string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := r.rdb.Publish(ctx, topic, data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}

// Start подписывается на room_* и возвращается, когда подписка подтверждена.
// Пересылка идёт до отмены ctx.
func (r *RedisRelay) Start(ctx context.Context) error {
	ps := r.rdb.PSubscribe(ctx, topicPrefix+"*")
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("redis psubscribe: %w", err)
	}

	ch := ps.Channel()
	go func() {
		defer ps.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				r.forward(ctx, m)
			}
		}
	}()
	return nil
}

func (r *RedisRelay) forward(ctx context.Context, m *redis.Message) {
	var ev Event
	if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
		r.log.Warn("bad event payload", zap.String("channel", m.Channel), zap.Error(err))
		return
	}
	if err := r.hub.Publish(ctx, m.Channel, ev); err != nil {
		r.log.Warn("local publish failed", zap.String("channel", m.Channel), zap.Error(err))
	}
}
