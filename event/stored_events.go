package event

import (
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	EventPersistCreateFunc = eventPersistCreate
)

func eventPersistCreate(record *EventRecord, db *gorm.DB) error {
	return db.Create(record).Error
}

// LoadPendingEvents returns unsynced records due at now, oldest first.
func LoadPendingEvents(db *gorm.DB, now time.Time, limit int) ([]EventRecord, error) {
	var records []EventRecord
	q := db.Model(&EventRecord{}).Where("synced = ? AND failed = ?", false, false).
		Order("next_retry_time ASC").Order("id ASC")
	if err := q.Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	due := make([]EventRecord, 0, len(records))
	for _, r := range records {
		if !r.NextRetryTime.IsZero() && r.NextRetryTime.Time().After(now) {
			break
		}
		due = append(due, r)
	}
	return due, nil
}

func saveDispatchState(db *gorm.DB, r *EventRecord) error {
	return db.Model(&EventRecord{}).Where("id = ?", r.ID).Updates(map[string]interface{}{
		"synced":          r.Synced,
		"failed":          r.Failed,
		"handled_by":      r.HandledBy,
		"retry_count":     r.RetryCount,
		"next_retry_time": r.NextRetryTime,
	}).Error
}

func scheduleRetry(r *EventRecord, now time.Time, backoff time.Duration, maxRetries int) {
	r.RetryCount++
	if r.RetryCount >= maxRetries {
		r.Failed = true
		return
	}
	r.NextRetryTime = types.Timestamp(now.Add(backoff * time.Duration(r.RetryCount)))
}
