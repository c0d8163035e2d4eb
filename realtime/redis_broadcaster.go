package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	Prefix   string `env:"REDIS_CHANNEL_PREFIX" envDefault:"skillbridge:"`
}

// RedisBroadcaster fans messages out across service instances through redis pub/sub.
type RedisBroadcaster struct {
	client *redis.Client
	prefix string
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewRedisBroadcaster(client *redis.Client, prefix string) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, prefix: prefix}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(&msg)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.prefix+msg.Channel, payload).Err()
}

func (b *RedisBroadcaster) Subscribe(ctx context.Context, channels ...string) (Subscription, error) {
	names := make([]string, 0, len(channels))
	for _, c := range channels {
		names = append(names, b.prefix+c)
	}
	ps := b.client.Subscribe(ctx, names...)
	// wait for the subscription confirmation so no message published afterwards is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	s := &redisSubscription{ps: ps, ch: make(chan Message, subscriptionBuffer)}
	go s.pump(b.prefix)
	return s, nil
}

type redisSubscription struct {
	ps   *redis.PubSub
	ch   chan Message
	once sync.Once
}

func (s *redisSubscription) pump(prefix string) {
	defer close(s.ch)
	for m := range s.ps.Channel() {
		msg := Message{}
		if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
			logrus.Warnf("drop malformed realtime message on %s: %v", m.Channel, err)
			continue
		}
		if msg.Channel == "" {
			msg.Channel = strings.TrimPrefix(m.Channel, prefix)
		}
		select {
		case s.ch <- msg:
		default:
		}
	}
}

func (s *redisSubscription) Messages() <-chan Message {
	return s.ch
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		err = s.ps.Close()
	})
	return err
}
