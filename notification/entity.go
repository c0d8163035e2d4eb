package notification

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"skillbridge/misc"

	"github.com/fundwit/go-commons/types"
)

const (
	TypeRequest        = "request"
	TypeInvitation     = "invitation"
	TypeAccepted       = "accepted"
	TypeRejected       = "rejected"
	TypeStatusChange   = "status-change"
	TypeProgressUpdate = "progress-update"
	TypeCompleted      = "completed"
)

type Notification struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	RecipientID types.ID `json:"recipientId" gorm:"index:idx_notification_recipient"`

	Type    string  `json:"type"`
	Title   string  `json:"title"`
	Message string  `json:"message" sql:"type:TEXT"`
	Payload Payload `json:"payload" sql:"type:TEXT"`

	IsRead     bool            `json:"isRead"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME"`
}

type Payload struct {
	ProjectID       types.ID `json:"projectId"`
	ProjectTitle    string   `json:"projectTitle"`
	CounterpartID   types.ID `json:"counterpartId"`
	CounterpartName string   `json:"counterpartName"`
	Status          string   `json:"status"`
}

type NotificationQuery struct {
	UnreadOnly bool `form:"unreadOnly"`

	misc.PageQuery
}

type NotificationCreation struct {
	RecipientID types.ID `json:"recipientId" binding:"required"`
	Type        string   `json:"type" binding:"required,oneof=request invitation accepted rejected status-change progress-update completed"`
	Title       string   `json:"title" binding:"required,lte=200"`
	Message     string   `json:"message" binding:"lte=2000"`
	Payload     Payload  `json:"payload"`
}

// MarkRead targets the listed ids, or every notification of the recipient when All is set.
type MarkRead struct {
	IDs []types.ID `json:"ids"`
	All bool       `json:"all"`
}

func (p Payload) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&p)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (p *Payload) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), p)
}
