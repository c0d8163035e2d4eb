package candidacy

import (
	"errors"
	"skillbridge/account"
	"skillbridge/bizerror"
	"skillbridge/domain"
	"skillbridge/domain/state"
	"skillbridge/event"
	"skillbridge/idgen"
	"skillbridge/persistence"
	"skillbridge/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	candidacyIdWorker = idgen.NewWorker()

	ApplyFunc               = Apply
	WithdrawApplicationFunc = WithdrawApplication
	RejectApplicationFunc   = RejectApplication
	QueryApplicationsFunc   = QueryApplications
)

func Apply(projectId types.ID, c *domain.ApplicationCreation, sec *session.Session) (*domain.Application, error) {
	var application *domain.Application
	var record *event.EventRecord
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		project, err := domain.LoadProject(persistence.ForUpdate(tx), projectId)
		if err != nil {
			return err
		}
		if project.Status != state.StatusOpen {
			return bizerror.ErrProjectNotOpen
		}
		if project.OwnerID == sec.Identity.ID {
			return bizerror.ErrSelfCandidacy
		}
		freelancer, err := account.LoadUser(tx, sec.Identity.ID)
		if err != nil {
			return err
		}
		if err := CheckEligibility(project, freelancer, true); err != nil {
			return err
		}

		if _, err := FindApplication(tx, projectId, freelancer.ID); err == nil {
			return bizerror.ErrAlreadyApplied
		} else if !errors.Is(err, bizerror.ErrApplicationNotFound) {
			return err
		}

		a := domain.Application{ID: idgen.NextID(candidacyIdWorker), ProjectID: projectId, FreelancerID: freelancer.ID,
			Message: c.Message, Status: domain.CandidacyPending, CreateTime: types.CurrentTimestamp()}
		if err := tx.Create(&a).Error; err != nil {
			if isDuplicateKey(err) {
				return bizerror.ErrAlreadyApplied
			}
			return err
		}

		record, err = event.CreateProjectEvent(event.EventCategoryApplicationCreated, project, &sec.Identity, tx,
			event.WithCounterpart(freelancer.ID))
		if err != nil {
			return err
		}
		application = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	event.PostCommit(record)
	return application, nil
}

// WithdrawApplication deletes the pending application of the current user.
func WithdrawApplication(projectId types.ID, sec *session.Session) error {
	var record *event.EventRecord
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		project, err := domain.LoadProject(persistence.ForUpdate(tx), projectId)
		if err != nil {
			return err
		}
		a, err := FindApplication(tx, projectId, sec.Identity.ID)
		if err != nil {
			return err
		}
		if a.Status != domain.CandidacyPending {
			return bizerror.ErrCandidacyNotPending
		}
		db := tx.Where("id = ? AND status = ?", a.ID, domain.CandidacyPending).Delete(&domain.Application{})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrCandidacyNotPending
		}

		record, err = event.CreateProjectEvent(event.EventCategoryApplicationWithdrawn, project, &sec.Identity, tx,
			event.WithCounterpart(a.FreelancerID))
		return err
	})
	if err != nil {
		return err
	}
	event.PostCommit(record)
	return nil
}

func RejectApplication(projectId, applicationId types.ID, sec *session.Session) (*domain.Application, error) {
	var application *domain.Application
	var record *event.EventRecord
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		project, err := domain.LoadProject(persistence.ForUpdate(tx), projectId)
		if err != nil {
			return err
		}
		if project.OwnerID != sec.Identity.ID {
			return bizerror.ErrNotOwner
		}
		a := domain.Application{}
		if err := tx.Where(&domain.Application{ID: applicationId, ProjectID: projectId}).First(&a).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrApplicationNotFound
			}
			return err
		}
		if a.Status != domain.CandidacyPending {
			return bizerror.ErrCandidacyNotPending
		}

		now := types.CurrentTimestamp()
		db := tx.Model(&domain.Application{}).Where("id = ? AND status = ?", a.ID, domain.CandidacyPending).
			Updates(map[string]interface{}{"status": domain.CandidacyRejected, "respond_time": now})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrCandidacyNotPending
		}
		a.Status, a.RespondTime = domain.CandidacyRejected, now

		record, err = event.CreateProjectEvent(event.EventCategoryApplicationRejected, project, &sec.Identity, tx,
			event.WithCounterpart(a.FreelancerID))
		if err != nil {
			return err
		}
		application = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	event.PostCommit(record)
	return application, nil
}

// QueryApplications lists all applications of a project to its owner, and only the own one to anyone else.
func QueryApplications(projectId types.ID, sec *session.Session) ([]domain.Application, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	project, err := domain.LoadProject(db, projectId)
	if err != nil {
		return nil, err
	}
	q := db.Where("project_id = ?", projectId)
	if project.OwnerID != sec.Identity.ID && !sec.Perms.IsAdmin() {
		q = q.Where("freelancer_id = ?", sec.Identity.ID)
	}
	applications := []domain.Application{}
	if err := q.Order("create_time ASC").Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

// FindApplication reads the application of freelancerId with the given handle.
func FindApplication(db *gorm.DB, projectId, freelancerId types.ID) (*domain.Application, error) {
	a := domain.Application{}
	if err := db.Where(&domain.Application{ProjectID: projectId, FreelancerID: freelancerId}).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrApplicationNotFound
		}
		return nil, err
	}
	return &a, nil
}
