package assignment

import (
	"errors"
	"skillbridge/account"
	"skillbridge/bizerror"
	"skillbridge/domain"
	"skillbridge/domain/candidacy"
	"skillbridge/domain/state"
	"skillbridge/event"
	"skillbridge/infra/metrics"
	"skillbridge/persistence"
	"skillbridge/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

const (
	TriggerApplication = "application"
	TriggerInvitation  = "invitation"
	TriggerDirect      = "direct"
)

var (
	AssignFunc            = Assign
	AcceptApplicationFunc = AcceptApplication
	AcceptInvitationFunc  = AcceptInvitation
	AssignDirectlyFunc    = AssignDirectly
)

// AcceptApplication is the owner accepting one application.
func AcceptApplication(projectId, applicationId types.ID, sec *session.Session) (*domain.Project, error) {
	a := domain.Application{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	if err := db.Where(&domain.Application{ID: applicationId, ProjectID: projectId}).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrApplicationNotFound
		}
		return nil, err
	}
	return AssignFunc(projectId, a.FreelancerID, TriggerApplication, sec)
}

// AcceptInvitation is the invited freelancer accepting the invitation.
func AcceptInvitation(projectId types.ID, sec *session.Session) (*domain.Project, error) {
	return AssignFunc(projectId, sec.Identity.ID, TriggerInvitation, sec)
}

// AssignDirectly is the owner picking any pending candidate.
func AssignDirectly(projectId, freelancerId types.ID, sec *session.Session) (*domain.Project, error) {
	return AssignFunc(projectId, freelancerId, TriggerDirect, sec)
}

// Assign makes freelancerId the only assignee of an open project. The project moves to
// in_progress, the winning candidacies are accepted and every other pending candidacy is
// rejected, all in one transaction.
func Assign(projectId, freelancerId types.ID, trigger string, sec *session.Session) (*domain.Project, error) {
	var project *domain.Project
	var record *event.EventRecord
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		p, err := domain.LoadProject(persistence.ForUpdate(tx), projectId)
		if err != nil {
			return err
		}
		if err := checkActor(p, freelancerId, trigger, sec); err != nil {
			return err
		}
		if p.Status != state.StatusOpen {
			if p.AssignedTo == freelancerId {
				return bizerror.ErrAlreadyAssigned
			}
			return bizerror.ErrProjectNotOpen
		}

		freelancer, err := account.LoadUser(tx, freelancerId)
		if err != nil {
			return err
		}
		if err := candidacy.CheckEligibility(p, freelancer, false); err != nil {
			return err
		}
		if err := findWinner(tx, projectId, freelancerId, trigger); err != nil {
			return err
		}
		rivals, err := candidacy.PendingCandidates(tx, projectId, freelancerId)
		if err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		db := tx.Model(&domain.Project{}).
			Where("id = ? AND status = ? AND assigned_to = ?", projectId, state.StatusOpen, 0).
			Updates(map[string]interface{}{"status": state.StatusInProgress, "assigned_to": freelancerId,
				"request_to_freelancer": 0, "progress": 0, "update_time": now})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		if err := candidacy.ResolvePending(tx, projectId, freelancerId, now); err != nil {
			return err
		}

		p.Status, p.AssignedTo, p.RequestToFreelancer, p.Progress, p.UpdateTime = state.StatusInProgress, freelancerId, 0, 0, now
		record, err = event.CreateProjectEvent(event.EventCategoryProjectAssigned, p, &sec.Identity, tx,
			event.WithCounterpart(freelancerId), event.WithRivals(rivals),
			event.WithUpdatedProperty(event.PropertyStatus, state.StatusOpen, state.StatusInProgress))
		if err != nil {
			return err
		}
		project = p
		return nil
	})
	metrics.RecordAssignment(trigger, assignmentResult(err))
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition(state.StatusOpen, state.StatusInProgress, actorRole(trigger))
	event.PostCommit(record)
	return project, nil
}

func checkActor(project *domain.Project, freelancerId types.ID, trigger string, sec *session.Session) error {
	switch trigger {
	case TriggerApplication, TriggerDirect:
		if project.OwnerID != sec.Identity.ID {
			return bizerror.ErrNotOwner
		}
	case TriggerInvitation:
		if freelancerId != sec.Identity.ID {
			return bizerror.ErrNotCandidacyOf
		}
	default:
		return bizerror.ErrForbidden
	}
	return nil
}

// findWinner checks that the trigger is backed by a pending candidacy of freelancerId.
func findWinner(tx *gorm.DB, projectId, freelancerId types.ID, trigger string) error {
	application, err := candidacy.FindApplication(tx, projectId, freelancerId)
	if err != nil && !errors.Is(err, bizerror.ErrApplicationNotFound) {
		return err
	}
	invitation, err := candidacy.FindInvitation(tx, projectId, freelancerId)
	if err != nil && !errors.Is(err, bizerror.ErrInvitationNotFound) {
		return err
	}
	applied := application != nil && application.Status == domain.CandidacyPending
	invited := invitation != nil && invitation.Status == domain.CandidacyPending

	switch {
	case trigger == TriggerApplication && applied,
		trigger == TriggerInvitation && invited,
		trigger == TriggerDirect && (applied || invited):
		return nil
	}
	return bizerror.ErrNoPendingCandidacy
}

func actorRole(trigger string) string {
	if trigger == TriggerInvitation {
		return state.RoleAssignee
	}
	return state.RoleOwner
}

func assignmentResult(err error) string {
	if err == nil {
		return "success"
	}
	var conflict *bizerror.ConflictError
	if errors.As(err, &conflict) {
		return "conflict"
	}
	return "rejected"
}
