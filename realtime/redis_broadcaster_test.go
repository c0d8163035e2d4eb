package realtime_test

import (
	"context"
	"os"
	"skillbridge/realtime"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/gomega"
)

func TestRedisBroadcaster(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should fail fast when redis is unreachable", func(t *testing.T) {
		client := realtime.NewRedisClient(realtime.RedisConfig{Addr: "127.0.0.1:1"})
		defer client.Close()
		b := realtime.NewRedisBroadcaster(client, "test:")

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		Expect(b.Publish(ctx, realtime.Message{Channel: realtime.ChannelProjects})).ToNot(Succeed())
		_, err := b.Subscribe(ctx, realtime.ChannelProjects)
		Expect(err).ToNot(BeNil())
	})

	// e.g. TEST_REDIS_ADDR=127.0.0.1:6379
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}

	t.Run("should relay messages between instances", func(t *testing.T) {
		prefix := "test_" + uuid.New().String() + ":"
		publisherClient := realtime.NewRedisClient(realtime.RedisConfig{Addr: addr})
		defer publisherClient.Close()
		subscriberClient := realtime.NewRedisClient(realtime.RedisConfig{Addr: addr})
		defer subscriberClient.Close()
		publisher := realtime.NewRedisBroadcaster(publisherClient, prefix)
		subscriber := realtime.NewRedisBroadcaster(subscriberClient, prefix)

		ctx := context.Background()
		sub, err := subscriber.Subscribe(ctx, realtime.ProjectChannel(7))
		Expect(err).To(BeNil())
		defer sub.Close()

		msg := realtime.Message{Channel: realtime.ProjectChannel(7), Type: realtime.MessageProjectUpdated, ProjectID: 7, Status: "open"}
		Expect(publisher.Publish(ctx, msg)).To(Succeed())
		Expect(publisher.Publish(ctx, realtime.Message{Channel: realtime.ProjectChannel(8), ProjectID: 8})).To(Succeed())

		var received realtime.Message
		Eventually(sub.Messages(), 3*time.Second).Should(Receive(&received))
		Expect(received.ProjectID).To(BeEquivalentTo(7))
		Expect(received.Status).To(Equal("open"))
		Consistently(sub.Messages(), 200*time.Millisecond).ShouldNot(Receive())

		Expect(sub.Close()).To(Succeed())
		Eventually(sub.Messages()).Should(BeClosed())
	})
}
