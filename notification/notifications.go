package notification

import (
	"context"
	"errors"
	"skillbridge/bizerror"
	"skillbridge/idgen"
	"skillbridge/infra/metrics"
	"skillbridge/misc"
	"skillbridge/persistence"
	"skillbridge/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	notificationIdWorker = idgen.NewWorker()

	QueryNotificationsFunc    = QueryNotifications
	CreateNotificationFunc    = CreateNotification
	MarkNotificationReadFunc  = MarkNotificationRead
	MarkNotificationsReadFunc = MarkNotificationsRead
	DeleteNotificationFunc    = DeleteNotification
	ClearNotificationsFunc    = ClearNotifications
)

func QueryNotifications(q *NotificationQuery, sec *session.Session) (*misc.PagedBody, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	query := db.Model(&Notification{}).Where("recipient_id = ?", sec.Identity.ID)
	if q.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total uint64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	_, size := q.Normalize()
	records := []Notification{}
	if err := query.Order("create_time DESC").Order("id DESC").Offset(q.Offset()).Limit(size).Find(&records).Error; err != nil {
		return nil, err
	}
	return &misc.PagedBody{List: records, Total: total}, nil
}

func CreateNotification(c *NotificationCreation, sec *session.Session) (*Notification, error) {
	if c.RecipientID != sec.Identity.ID {
		return nil, bizerror.ErrForbidden
	}
	n := Notification{ID: idgen.NextID(notificationIdWorker), RecipientID: c.RecipientID, Type: c.Type,
		Title: c.Title, Message: c.Message, Payload: c.Payload, CreateTime: types.CurrentTimestamp()}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Create(&n).Error; err != nil {
		return nil, err
	}
	metrics.RecordNotificationCreated(n.Type)
	return &n, nil
}

func MarkNotificationRead(id types.ID, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	r := db.Model(&Notification{}).Where("id = ? AND recipient_id = ?", id, sec.Identity.ID).Update("is_read", true)
	if r.Error != nil {
		return r.Error
	}
	if r.RowsAffected == 0 {
		// already read rows are not counted by every driver
		n := Notification{}
		if err := db.Where("id = ? AND recipient_id = ?", id, sec.Identity.ID).First(&n).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotificationNotFound
			}
			return err
		}
	}
	return nil
}

// MarkNotificationsRead marks the listed notifications, or all of them, and returns how many were unread.
func MarkNotificationsRead(m *MarkRead, sec *session.Session) (int64, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	q := db.Model(&Notification{}).Where("recipient_id = ? AND is_read = ?", sec.Identity.ID, false)
	if !m.All {
		if len(m.IDs) == 0 {
			return 0, nil
		}
		q = q.Where("id IN (?)", m.IDs)
	}
	r := q.Update("is_read", true)
	return r.RowsAffected, r.Error
}

func DeleteNotification(id types.ID, sec *session.Session) error {
	r := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).
		Where("id = ? AND recipient_id = ?", id, sec.Identity.ID).Delete(&Notification{})
	if r.Error != nil {
		return r.Error
	}
	if r.RowsAffected == 0 {
		return bizerror.ErrNotificationNotFound
	}
	return nil
}

func ClearNotifications(sec *session.Session) (int64, error) {
	r := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).
		Where("recipient_id = ?", sec.Identity.ID).Delete(&Notification{})
	return r.RowsAffected, r.Error
}

func saveNotifications(ctx context.Context, list []Notification) error {
	return persistence.ActiveDataSourceManager.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		now := types.CurrentTimestamp()
		for i := range list {
			list[i].ID = idgen.NextID(notificationIdWorker)
			list[i].CreateTime = now
			if err := tx.Create(&list[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
