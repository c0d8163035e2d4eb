package event

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"skillbridge/domain"

	"github.com/fundwit/go-commons/types"
)

const SourceTypeProject = "PROJECT"

const (
	EventCategoryProjectCreated       EventCategory = "PROJECT_CREATED"
	EventCategoryProjectDeleted       EventCategory = "PROJECT_DELETED"
	EventCategoryApplicationCreated   EventCategory = "APPLICATION_CREATED"
	EventCategoryApplicationWithdrawn EventCategory = "APPLICATION_WITHDRAWN"
	EventCategoryApplicationRejected  EventCategory = "APPLICATION_REJECTED"
	EventCategoryInvitationCreated    EventCategory = "INVITATION_CREATED"
	EventCategoryInvitationWithdrawn  EventCategory = "INVITATION_WITHDRAWN"
	EventCategoryInvitationRejected   EventCategory = "INVITATION_REJECTED"
	EventCategoryProjectAssigned      EventCategory = "PROJECT_ASSIGNED"
	EventCategoryStatusChanged        EventCategory = "STATUS_CHANGED"
	EventCategoryProgressUpdated      EventCategory = "PROGRESS_UPDATED"
)

const (
	PropertyStatus              = "status"
	PropertyProgress            = "progress"
	PropertyRequestToFreelancer = "requestToFreelancer"
)

type EventCategory string

type Event struct {
	SourceId   types.ID `json:"sourceId"`
	SourceType string   `json:"sourceType"`
	SourceDesc string   `json:"sourceDesc"`

	CreatorId   types.ID `json:"creatorId"`
	CreatorName string   `json:"creatorName"`

	EventCategory EventCategory `json:"eventCategory"`

	// project state right after the change
	Project ProjectSnapshot `json:"project" sql:"type:TEXT"`
	// the other party of a candidacy event
	CounterpartId types.ID `json:"counterpartId"`
	// pending candidates rejected as a side effect
	Rivals            IDs               `json:"rivals" sql:"type:TEXT"`
	UpdatedProperties UpdatedProperties `json:"updatedProperties" sql:"type:TEXT"`
}

type EventRecord struct {
	ID types.ID `json:"id" gorm:"primary_key"`
	Event

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME"`
	Synced    bool            `json:"synced"`

	HandledBy     HandlerNames    `json:"handledBy" sql:"type:TEXT"`
	RetryCount    int             `json:"retryCount"`
	NextRetryTime types.Timestamp `json:"nextRetryTime" sql:"type:DATETIME"`
	Failed        bool            `json:"failed"`
}

func (r *EventRecord) TableName() string {
	return "events"
}

// UpdatedProperty returns the change of the named property, if recorded.
func (e *Event) UpdatedProperty(name string) (UpdatedProperty, bool) {
	for _, p := range e.UpdatedProperties {
		if p.PropertyName == name {
			return p, true
		}
	}
	return UpdatedProperty{}, false
}

type UpdatedProperty struct {
	PropertyName string `json:"propertyName"`
	PropertyDesc string `json:"propertyDesc"`

	OldValue     string `json:"oldValue"`
	OldValueDesc string `json:"oldValueDesc"`
	NewValue     string `json:"newValue"`
	NewValueDesc string `json:"newValueDesc"`
}

type UpdatedProperties []UpdatedProperty

// ProjectSnapshot is stored as one JSON column, the gorm settings of Project stay off it.
type ProjectSnapshot struct {
	domain.Project
}

type IDs []types.ID

type HandlerNames []string

func (n HandlerNames) Contains(name string) bool {
	for _, v := range n {
		if v == name {
			return true
		}
	}
	return false
}

func (t UpdatedProperties) Value() (driver.Value, error) {
	return jsonValue(t)
}

func (c *UpdatedProperties) Scan(v interface{}) error {
	return jsonScan(v, c)
}

func (t ProjectSnapshot) Value() (driver.Value, error) {
	return jsonValue(&t)
}

func (c *ProjectSnapshot) Scan(v interface{}) error {
	return jsonScan(v, c)
}

func (t IDs) Value() (driver.Value, error) {
	if t == nil {
		t = IDs{}
	}
	return jsonValue(t)
}

func (c *IDs) Scan(v interface{}) error {
	return jsonScan(v, c)
}

func (t HandlerNames) Value() (driver.Value, error) {
	if t == nil {
		t = HandlerNames{}
	}
	return jsonValue(t)
}

func (c *HandlerNames) Scan(v interface{}) error {
	return jsonScan(v, c)
}

func jsonValue(v interface{}) (driver.Value, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func jsonScan(v interface{}, target interface{}) error {
	if v == nil {
		return nil
	}
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	if jsonString == "" {
		return nil
	}
	return json.Unmarshal([]byte(jsonString), target)
}
