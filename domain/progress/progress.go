package progress

import (
	"math"
	"skillbridge/bizerror"
	"skillbridge/domain"
	"skillbridge/domain/state"
	"skillbridge/event"
	"skillbridge/persistence"
	"skillbridge/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var UpdateProgressFunc = UpdateProgress

// ValidateProgress accepts whole numbers between 0 and 100.
func ValidateProgress(value float64) (int, error) {
	if math.IsNaN(value) || value != math.Trunc(value) || value < 0 || value > 100 {
		return 0, bizerror.ErrInvalidProgress
	}
	return int(value), nil
}

// UpdateProgress records the completion percentage reported by the assigned freelancer.
// The status is never changed, not even at 100.
func UpdateProgress(projectId types.ID, value float64, sec *session.Session) (*domain.Project, error) {
	progress, err := ValidateProgress(value)
	if err != nil {
		return nil, err
	}

	var project *domain.Project
	var record *event.EventRecord
	err = persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		p, err := domain.LoadProject(persistence.ForUpdate(tx), projectId)
		if err != nil {
			return err
		}
		if p.AssignedTo == 0 || p.AssignedTo != sec.Identity.ID {
			return bizerror.ErrNotAssignee
		}
		if p.Status != state.StatusInProgress && p.Status != state.StatusRevision {
			return &bizerror.ValidationError{Code: "project.progress_not_allowed",
				Message: "progress can only be updated while the project is in progress or in revision"}
		}

		now := types.CurrentTimestamp()
		db := tx.Model(&domain.Project{}).
			Where("id = ? AND assigned_to = ? AND status = ? AND progress = ?", p.ID, p.AssignedTo, p.Status, p.Progress).
			Updates(map[string]interface{}{"progress": progress, "update_time": now})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}

		old := p.Progress
		p.Progress, p.UpdateTime = progress, now
		record, err = event.CreateProjectEvent(event.EventCategoryProgressUpdated, p, &sec.Identity, tx,
			event.WithUpdatedInt(event.PropertyProgress, old, progress))
		if err != nil {
			return err
		}
		project = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	event.PostCommit(record)
	return project, nil
}
