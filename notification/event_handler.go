package notification

import (
	"context"
	"fmt"
	"skillbridge/account"
	"skillbridge/bizerror"
	"skillbridge/event"
	"skillbridge/infra/metrics"

	"github.com/sirupsen/logrus"
)

const HandlerName = "notification"

// EventHandler persists the notifications derived from a lifecycle event in one transaction.
func EventHandler(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != event.SourceTypeProject {
		return nil
	}
	ctx := context.Background()

	names, err := account.QueryAccountNamesFunc(ctx, Participants(e))
	if err != nil {
		// names are cosmetic, fall back to placeholders
		logrus.Warn(&bizerror.DependencyError{Component: "account names", Cause: err})
		names = nil
	}

	list := BuildNotifications(e, names)
	if len(list) == 0 {
		return nil
	}
	if err := saveNotifications(ctx, list); err != nil {
		return &event.EventHandleResult{Success: false, HandlerIdentifier: HandlerName,
			Message: (&bizerror.DependencyError{Component: "notification store", Cause: err}).Error()}
	}
	for _, n := range list {
		metrics.RecordNotificationCreated(n.Type)
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: HandlerName,
		Message: fmt.Sprintf("%d notifications created for event %d", len(list), e.ID)}
}
