package realtime

import (
	"context"
	"fmt"
	"skillbridge/bizerror"
	"skillbridge/event"
	"skillbridge/infra/metrics"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

const HandlerName = "realtime"

// EventHandler fans a lifecycle event out to the entity and list channels.
// Publish failures are logged and never retried.
func EventHandler(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != event.SourceTypeProject {
		return nil
	}
	ctx := context.Background()

	messages := BuildMessages(e)
	failed := 0
	for _, msg := range messages {
		err := ActiveBroadcaster.Publish(ctx, msg)
		metrics.RecordRealtimePublish(msg.Type, err)
		if err != nil {
			failed++
			logrus.Warn(&bizerror.DependencyError{Component: "realtime broadcaster", Cause: err})
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: HandlerName,
		Message: fmt.Sprintf("%d messages published, %d failed", len(messages)-failed, failed)}
}

// BuildMessages lists the messages announcing e: one per project channel, one for the
// project list, and one per freelancer whose candidacy or assignment was touched.
func BuildMessages(e *event.EventRecord) []Message {
	base := Message{
		Event:     string(e.EventCategory),
		ProjectID: e.SourceId,
		Status:    e.Project.Status,
		Timestamp: e.Timestamp,
	}

	project := base
	project.Channel = ProjectChannel(e.SourceId)
	project.Type = MessageProjectUpdated

	list := base
	list.Channel = ChannelProjects
	list.Type = MessageProjectsChanged

	messages := []Message{project, list}
	for _, id := range affectedFreelancers(e) {
		m := base
		m.Channel = FreelancerChannel(id)
		m.Type = MessageFreelancerUpdated
		m.FreelancerID = id
		messages = append(messages, m)
	}
	return messages
}

func affectedFreelancers(e *event.EventRecord) []types.ID {
	candidates := []types.ID{e.Project.AssignedTo, e.CounterpartId, e.Project.RequestToFreelancer}
	if e.CreatorId != e.Project.OwnerID {
		candidates = append(candidates, e.CreatorId)
	}
	candidates = append(candidates, e.Rivals...)

	seen := map[types.ID]bool{}
	ids := []types.ID{}
	for _, id := range candidates {
		if id == 0 || id == e.Project.OwnerID || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
