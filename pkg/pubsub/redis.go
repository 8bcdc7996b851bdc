package pubsub

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/veridlabs/id-node/internal/log"
)

// RedisClient struct
type RedisClient struct {
	conn *redis.Client
}

// NewRedis returns a redis pubsub client
func NewRedis(rdb *redis.Client) Client {
	return &RedisClient{rdb}
}

// Publish publishes a new topic payload
func (rdb *RedisClient) Publish(ctx context.Context, topic string, payload Event) error {
	msg, err := payload.Marshal()
	if err != nil {
		return err
	}
	return rdb.conn.Publish(ctx, topic, []byte(msg)).Err()
}

// Subscribe adds a topic to the pubsub. Each callback runs in its own
// goroutine and a panicking callback does not take the subscription down.
func (rdb *RedisClient) Subscribe(ctx context.Context, topic string, callback EventHandler) {
	pubsub := rdb.conn.Subscribe(ctx, topic)
	go func() {
		for {
			select {
			case event := <-pubsub.Channel():
				if event.Channel != topic {
					log.Error(ctx, "msg channel != topic")
					continue
				}
				run(ctx, callback, Message(event.Payload))

			case <-ctx.Done():
				return
			}
		}
	}()
}

func run(ctx context.Context, callback EventHandler, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(ctx, "recovered from panic in pubsub callback", "recovered", r)
		}
	}()
	if err := callback(ctx, msg); err != nil {
		log.Error(ctx, "executing callback function", "err", err)
	}
}
