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
	InviteFunc             = Invite
	WithdrawInvitationFunc = WithdrawInvitation
	RejectInvitationFunc   = RejectInvitation
	QueryInvitationsFunc   = QueryInvitations
)

// Invite creates a pending invitation of freelancerId. With asRequest the freelancer also becomes
// the requested freelancer of the project, which holds at most one.
func Invite(projectId, freelancerId types.ID, asRequest bool, sec *session.Session) (*domain.Invitation, error) {
	var invitation *domain.Invitation
	var record *event.EventRecord
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		project, err := domain.LoadProject(persistence.ForUpdate(tx), projectId)
		if err != nil {
			return err
		}
		if project.OwnerID != sec.Identity.ID {
			return bizerror.ErrNotOwner
		}
		if project.Status != state.StatusOpen {
			return bizerror.ErrProjectNotOpen
		}
		freelancer, err := account.LoadUser(tx, freelancerId)
		if err != nil {
			return err
		}
		if err := CheckEligibility(project, freelancer, false); err != nil {
			return err
		}

		if _, err := FindInvitation(tx, projectId, freelancerId); err == nil {
			return bizerror.ErrAlreadyInvited
		} else if !errors.Is(err, bizerror.ErrInvitationNotFound) {
			return err
		}

		opts := []event.Option{event.WithCounterpart(freelancerId)}
		if asRequest {
			if project.RequestToFreelancer != 0 && project.RequestToFreelancer != freelancerId {
				return bizerror.ErrFreelancerAlreadyRequested
			}
			if err := setRequestToFreelancer(tx, project, freelancerId); err != nil {
				return err
			}
			opts = append(opts, event.WithUpdatedProperty(event.PropertyRequestToFreelancer, "", freelancerId.String()))
		}

		i := domain.Invitation{ID: idgen.NextID(candidacyIdWorker), ProjectID: projectId, FreelancerID: freelancerId,
			OwnerID: project.OwnerID, Status: domain.CandidacyPending, CreateTime: types.CurrentTimestamp()}
		if err := tx.Create(&i).Error; err != nil {
			if isDuplicateKey(err) {
				return bizerror.ErrAlreadyInvited
			}
			return err
		}

		record, err = event.CreateProjectEvent(event.EventCategoryInvitationCreated, project, &sec.Identity, tx, opts...)
		if err != nil {
			return err
		}
		invitation = &i
		return nil
	})
	if err != nil {
		return nil, err
	}
	event.PostCommit(record)
	return invitation, nil
}

// WithdrawInvitation deletes a pending invitation issued by the project owner.
func WithdrawInvitation(projectId, freelancerId types.ID, sec *session.Session) error {
	var record *event.EventRecord
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		project, err := domain.LoadProject(persistence.ForUpdate(tx), projectId)
		if err != nil {
			return err
		}
		if project.OwnerID != sec.Identity.ID {
			return bizerror.ErrNotOwner
		}
		i, err := FindInvitation(tx, projectId, freelancerId)
		if err != nil {
			return err
		}
		if i.Status != domain.CandidacyPending {
			return bizerror.ErrCandidacyNotPending
		}
		db := tx.Where("id = ? AND status = ?", i.ID, domain.CandidacyPending).Delete(&domain.Invitation{})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrCandidacyNotPending
		}

		opts, err := releaseRequest(tx, project, freelancerId)
		if err != nil {
			return err
		}
		record, err = event.CreateProjectEvent(event.EventCategoryInvitationWithdrawn, project, &sec.Identity, tx,
			append(opts, event.WithCounterpart(freelancerId))...)
		return err
	})
	if err != nil {
		return err
	}
	event.PostCommit(record)
	return nil
}

// RejectInvitation is the invited freelancer declining a pending invitation.
func RejectInvitation(projectId types.ID, sec *session.Session) (*domain.Invitation, error) {
	var invitation *domain.Invitation
	var record *event.EventRecord
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		project, err := domain.LoadProject(persistence.ForUpdate(tx), projectId)
		if err != nil {
			return err
		}
		i, err := FindInvitation(tx, projectId, sec.Identity.ID)
		if err != nil {
			return err
		}
		if i.Status != domain.CandidacyPending {
			return bizerror.ErrCandidacyNotPending
		}

		now := types.CurrentTimestamp()
		db := tx.Model(&domain.Invitation{}).Where("id = ? AND status = ?", i.ID, domain.CandidacyPending).
			Updates(map[string]interface{}{"status": domain.CandidacyRejected, "respond_time": now})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrCandidacyNotPending
		}
		i.Status, i.RespondTime = domain.CandidacyRejected, now

		opts, err := releaseRequest(tx, project, sec.Identity.ID)
		if err != nil {
			return err
		}
		record, err = event.CreateProjectEvent(event.EventCategoryInvitationRejected, project, &sec.Identity, tx,
			append(opts, event.WithCounterpart(sec.Identity.ID))...)
		if err != nil {
			return err
		}
		invitation = i
		return nil
	})
	if err != nil {
		return nil, err
	}
	event.PostCommit(record)
	return invitation, nil
}

// QueryInvitations lists all invitations of a project to its owner, and only the own one to anyone else.
func QueryInvitations(projectId types.ID, sec *session.Session) ([]domain.Invitation, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	project, err := domain.LoadProject(db, projectId)
	if err != nil {
		return nil, err
	}
	q := db.Where("project_id = ?", projectId)
	if project.OwnerID != sec.Identity.ID && !sec.Perms.IsAdmin() {
		q = q.Where("freelancer_id = ?", sec.Identity.ID)
	}
	invitations := []domain.Invitation{}
	if err := q.Order("create_time ASC").Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

// FindInvitation reads the invitation of freelancerId with the given handle.
func FindInvitation(db *gorm.DB, projectId, freelancerId types.ID) (*domain.Invitation, error) {
	i := domain.Invitation{}
	if err := db.Where(&domain.Invitation{ProjectID: projectId, FreelancerID: freelancerId}).First(&i).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrInvitationNotFound
		}
		return nil, err
	}
	return &i, nil
}

// setRequestToFreelancer compares and sets the requested freelancer, updating project in place.
func setRequestToFreelancer(tx *gorm.DB, project *domain.Project, freelancerId types.ID) error {
	now := types.CurrentTimestamp()
	db := tx.Model(&domain.Project{}).
		Where("id = ? AND request_to_freelancer = ?", project.ID, project.RequestToFreelancer).
		Updates(map[string]interface{}{"request_to_freelancer": freelancerId, "update_time": now})
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected != 1 {
		return bizerror.ErrConcurrentModification
	}
	project.RequestToFreelancer, project.UpdateTime = freelancerId, now
	return nil
}

// releaseRequest clears the requested freelancer when it is freelancerId.
func releaseRequest(tx *gorm.DB, project *domain.Project, freelancerId types.ID) ([]event.Option, error) {
	if project.RequestToFreelancer != freelancerId {
		return nil, nil
	}
	if err := setRequestToFreelancer(tx, project, 0); err != nil {
		return nil, err
	}
	return []event.Option{event.WithUpdatedProperty(event.PropertyRequestToFreelancer, freelancerId.String(), "")}, nil
}
