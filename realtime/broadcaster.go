package realtime

import (
	"context"
	"strings"

	"github.com/fundwit/go-commons/types"
)

const (
	ChannelProjects         = "projects"
	channelProjectPrefix    = "project."
	channelFreelancerPrefix = "freelancer."
)

const (
	MessageProjectUpdated    = "project.updated"
	MessageProjectsChanged   = "projects.changed"
	MessageFreelancerUpdated = "freelancer.updated"
)

type Message struct {
	Channel      string          `json:"channel"`
	Type         string          `json:"type"`
	Event        string          `json:"event"`
	ProjectID    types.ID        `json:"projectId"`
	FreelancerID types.ID        `json:"freelancerId,omitempty"`
	Status       string          `json:"status,omitempty"`
	Timestamp    types.Timestamp `json:"timestamp"`
}

type Subscription interface {
	Messages() <-chan Message
	Close() error
}

// Broadcaster delivers messages at most once to the current subscribers of a channel.
type Broadcaster interface {
	Publish(ctx context.Context, msg Message) error
	Subscribe(ctx context.Context, channels ...string) (Subscription, error)
}

var ActiveBroadcaster Broadcaster = NewMemoryBroadcaster()

func ProjectChannel(id types.ID) string {
	return channelProjectPrefix + id.String()
}

func FreelancerChannel(id types.ID) string {
	return channelFreelancerPrefix + id.String()
}

// ParseChannel splits a channel name into its kind and entity id.
func ParseChannel(channel string) (kind string, id types.ID, ok bool) {
	if channel == ChannelProjects {
		return ChannelProjects, 0, true
	}
	for _, prefix := range []string{channelProjectPrefix, channelFreelancerPrefix} {
		if strings.HasPrefix(channel, prefix) {
			id, err := types.ParseID(strings.TrimPrefix(channel, prefix))
			if err != nil || id == 0 {
				return "", 0, false
			}
			return strings.TrimSuffix(prefix, "."), id, true
		}
	}
	return "", 0, false
}
