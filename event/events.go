package event

import (
	"skillbridge/domain"
	"skillbridge/idgen"
	"skillbridge/session"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var eventIdWorker = idgen.NewWorker()

type Option func(r *EventRecord)

func WithCounterpart(id types.ID) Option {
	return func(r *EventRecord) {
		r.CounterpartId = id
	}
}

func WithRivals(ids []types.ID) Option {
	return func(r *EventRecord) {
		r.Rivals = append(IDs{}, ids...)
	}
}

func WithUpdatedProperty(name, oldValue, newValue string) Option {
	return func(r *EventRecord) {
		r.UpdatedProperties = append(r.UpdatedProperties, UpdatedProperty{
			PropertyName: name, OldValue: oldValue, NewValue: newValue})
	}
}

func WithUpdatedInt(name string, oldValue, newValue int) Option {
	return WithUpdatedProperty(name, strconv.Itoa(oldValue), strconv.Itoa(newValue))
}

// CreateProjectEvent appends an outbox record in the caller's transaction.
func CreateProjectEvent(category EventCategory, project *domain.Project, identity *session.Identity,
	tx *gorm.DB, opts ...Option) (*EventRecord, error) {

	record := EventRecord{
		ID: idgen.NextID(eventIdWorker),
		Event: Event{
			SourceType: SourceTypeProject,
			SourceId:   project.ID,
			SourceDesc: project.Title,

			EventCategory:     category,
			Project:           ProjectSnapshot{Project: *project},
			Rivals:            IDs{},
			UpdatedProperties: UpdatedProperties{},

			CreatorId:   identity.ID,
			CreatorName: identity.DisplayName(),
		},
		Synced:    false,
		HandledBy: HandlerNames{},
		Timestamp: types.CurrentTimestamp(),
	}
	for _, opt := range opts {
		opt(&record)
	}

	if err := EventPersistCreateFunc(&record, tx); err != nil {
		return nil, err
	}
	return &record, nil
}

// NotifyCommittedFunc is called with the records of a committed transaction.
var NotifyCommittedFunc func(records ...*EventRecord)

func PostCommit(records ...*EventRecord) {
	if NotifyCommittedFunc == nil {
		return
	}
	committed := make([]*EventRecord, 0, len(records))
	for _, r := range records {
		if r != nil {
			committed = append(committed, r)
		}
	}
	if len(committed) > 0 {
		NotifyCommittedFunc(committed...)
	}
}
