package notification

import (
	"fmt"
	"skillbridge/domain"
	"skillbridge/domain/state"
	"skillbridge/event"
	"strconv"
	"strings"

	"github.com/fundwit/go-commons/types"
)

// ProgressNotifyPolicy decides whether a progress change is worth a notification to the owner.
var ProgressNotifyPolicy = func(oldValue, newValue int) bool {
	return newValue > 0
}

// Participants lists the users whose names are needed to render notifications of e.
func Participants(e *event.EventRecord) []types.ID {
	seen := map[types.ID]bool{}
	ids := []types.ID{}
	for _, id := range append([]types.ID{e.CreatorId, e.Project.OwnerID, e.Project.AssignedTo, e.CounterpartId}, e.Rivals...) {
		if id != 0 && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// BuildNotifications maps a lifecycle event to one notification per recipient. ID and
// CreateTime are left to the caller.
func BuildNotifications(e *event.EventRecord, names map[types.ID]string) []Notification {
	project := e.Project.Project
	b := builder{event: e, project: &project, names: names}

	switch e.EventCategory {
	case event.EventCategoryApplicationCreated:
		b.add(project.OwnerID, TypeRequest, e.CreatorId, "New application",
			fmt.Sprintf("%s applied to \"%s\"", b.name(e.CreatorId), project.Title))

	case event.EventCategoryInvitationCreated:
		b.add(e.CounterpartId, TypeInvitation, project.OwnerID, "New invitation",
			fmt.Sprintf("%s invited you to \"%s\"", b.name(project.OwnerID), project.Title))

	case event.EventCategoryApplicationRejected:
		b.add(e.CounterpartId, TypeRejected, project.OwnerID, "Application rejected",
			fmt.Sprintf("%s rejected your application to \"%s\"", b.name(project.OwnerID), project.Title))

	case event.EventCategoryInvitationRejected:
		b.add(project.OwnerID, TypeRejected, e.CreatorId, "Invitation declined",
			fmt.Sprintf("%s declined your invitation to \"%s\"", b.name(e.CreatorId), project.Title))

	case event.EventCategoryProjectAssigned:
		if e.CreatorId == project.AssignedTo {
			b.add(project.OwnerID, TypeAccepted, project.AssignedTo, "Invitation accepted",
				fmt.Sprintf("%s accepted your invitation to \"%s\"", b.name(project.AssignedTo), project.Title))
		} else {
			b.add(project.AssignedTo, TypeAccepted, project.OwnerID, "You got the project",
				fmt.Sprintf("%s assigned \"%s\" to you", b.name(project.OwnerID), project.Title))
		}
		b.rejectRivals(fmt.Sprintf("\"%s\" has been assigned to another freelancer", project.Title))

	case event.EventCategoryStatusChanged:
		change, found := e.UpdatedProperty(event.PropertyStatus)
		if !found {
			return b.result
		}
		if e.CreatorId == project.OwnerID {
			if change.OldValue == state.StatusOpen && change.NewValue == state.StatusCompleted {
				b.rejectRivals(fmt.Sprintf("\"%s\" was closed without an assignee", project.Title))
			} else if change.NewValue == state.StatusCompleted {
				b.add(project.AssignedTo, TypeCompleted, project.OwnerID, "Project completed",
					fmt.Sprintf("%s marked \"%s\" as completed", b.name(project.OwnerID), project.Title))
			} else {
				b.add(project.AssignedTo, TypeStatusChange, project.OwnerID, "Project status changed",
					fmt.Sprintf("%s moved \"%s\" to %s", b.name(project.OwnerID), project.Title, statusText(change.NewValue)))
			}
		} else {
			b.add(project.OwnerID, TypeStatusChange, e.CreatorId, "Project status changed",
				fmt.Sprintf("%s moved \"%s\" to %s", b.name(e.CreatorId), project.Title, statusText(change.NewValue)))
		}

	case event.EventCategoryProgressUpdated:
		change, found := e.UpdatedProperty(event.PropertyProgress)
		if !found {
			return b.result
		}
		oldValue, _ := strconv.Atoi(change.OldValue)
		newValue, err := strconv.Atoi(change.NewValue)
		if err != nil || !ProgressNotifyPolicy(oldValue, newValue) {
			return b.result
		}
		b.add(project.OwnerID, TypeProgressUpdate, e.CreatorId, "Progress updated",
			fmt.Sprintf("%s updated \"%s\" to %d%%", b.name(e.CreatorId), project.Title, newValue))
	}
	return b.result
}

type builder struct {
	event   *event.EventRecord
	project *domain.Project
	names   map[types.ID]string
	result  []Notification
}

func (b *builder) name(id types.ID) string {
	if n, found := b.names[id]; found && n != "" {
		return n
	}
	if id == b.event.CreatorId && b.event.CreatorName != "" {
		return b.event.CreatorName
	}
	return "someone"
}

func (b *builder) add(recipient types.ID, notificationType string, counterpart types.ID, title, message string) {
	if recipient == 0 || recipient == b.event.CreatorId {
		return
	}
	b.result = append(b.result, Notification{
		RecipientID: recipient,
		Type:        notificationType,
		Title:       title,
		Message:     message,
		Payload: Payload{
			ProjectID:       b.project.ID,
			ProjectTitle:    b.project.Title,
			CounterpartID:   counterpart,
			CounterpartName: b.name(counterpart),
			Status:          b.project.Status,
		},
	})
}

func (b *builder) rejectRivals(message string) {
	for _, rival := range b.event.Rivals {
		b.add(rival, TypeRejected, b.project.OwnerID, "Candidacy closed", message)
	}
}

func statusText(status string) string {
	return strings.ReplaceAll(status, "_", " ")
}
