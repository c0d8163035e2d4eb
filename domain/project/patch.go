package project

import (
	"errors"
	"skillbridge/authority"
	"skillbridge/bizerror"
	"skillbridge/domain"
	"skillbridge/domain/assignment"
	"skillbridge/domain/candidacy"
	"skillbridge/domain/progress"
	"skillbridge/persistence"
	"skillbridge/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// Capabilities are the relations of the current user to a project.
type Capabilities struct {
	Owner               bool
	AssignedFreelancer  bool
	RequestedFreelancer bool
	Applicant           bool
}

// ResolveCapabilities computes the relations of sec to p. A requested freelancer holds a
// pending invitation, an applicant is any other student.
func ResolveCapabilities(db *gorm.DB, p *domain.Project, sec *session.Session) (Capabilities, error) {
	me := sec.Identity.ID
	caps := Capabilities{
		Owner:              p.OwnerID == me,
		AssignedFreelancer: p.AssignedTo != 0 && p.AssignedTo == me,
	}
	if caps.Owner || caps.AssignedFreelancer {
		return caps, nil
	}
	invitation, err := candidacy.FindInvitation(db, p.ID, me)
	if err != nil && !errors.Is(err, bizerror.ErrInvitationNotFound) {
		return caps, err
	}
	caps.RequestedFreelancer = invitation != nil && invitation.Status == domain.CandidacyPending
	caps.Applicant = sec.Perms.HasRole(authority.RoleStudent)
	return caps, nil
}

// PatchProject routes the single operation of patch to the service allowed for the
// caller's relation to the project. Anything unmapped is forbidden.
func PatchProject(id types.ID, patch *domain.ProjectPatch, sec *session.Session) (*domain.ProjectDetail, error) {
	if patch.Operations() != 1 {
		return nil, bizerror.ErrAmbiguousPatch
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	p, err := domain.LoadProject(db, id)
	if err != nil {
		return nil, err
	}
	caps, err := ResolveCapabilities(db, p, sec)
	if err != nil {
		return nil, err
	}
	me := sec.Identity.ID

	switch {
	case patch.Status != nil:
		if !caps.Owner && !caps.AssignedFreelancer {
			return nil, bizerror.ErrForbidden
		}
		return UpdateStatusFunc(id, *patch.Status, sec)

	case patch.Progress != nil:
		if !caps.AssignedFreelancer {
			return nil, bizerror.ErrForbidden
		}
		_, err = progress.UpdateProgressFunc(id, *patch.Progress, sec)

	case patch.AssignedTo != nil:
		switch {
		case caps.Owner:
			_, err = assignment.AssignDirectlyFunc(id, *patch.AssignedTo, sec)
		case caps.RequestedFreelancer && *patch.AssignedTo == me:
			_, err = assignment.AcceptInvitationFunc(id, sec)
		default:
			return nil, bizerror.ErrForbidden
		}

	case patch.RequestToFreelancerSet && patch.RequestToFreelancer != nil:
		if !caps.Owner {
			return nil, bizerror.ErrForbidden
		}
		_, err = candidacy.InviteFunc(id, *patch.RequestToFreelancer, true, sec)

	case patch.RequestToFreelancerSet:
		switch {
		case caps.Owner:
			if p.RequestToFreelancer == 0 {
				return nil, bizerror.ErrInvitationNotFound
			}
			err = candidacy.WithdrawInvitationFunc(id, p.RequestToFreelancer, sec)
		case caps.RequestedFreelancer:
			_, err = candidacy.RejectInvitationFunc(id, sec)
		default:
			return nil, bizerror.ErrForbidden
		}

	case patch.ApplyToProject != nil:
		if !caps.RequestedFreelancer && !caps.Applicant {
			return nil, bizerror.ErrForbidden
		}
		if *patch.ApplyToProject {
			_, err = candidacy.ApplyFunc(id, &domain.ApplicationCreation{Message: patch.Message}, sec)
		} else {
			err = candidacy.WithdrawApplicationFunc(id, sec)
		}

	case patch.RemoveFreelancerRequest != nil:
		freelancer := *patch.RemoveFreelancerRequest
		switch {
		case caps.Owner:
			var a *domain.Application
			if a, err = candidacy.FindApplication(db, id, freelancer); err == nil {
				_, err = candidacy.RejectApplicationFunc(id, a.ID, sec)
			}
		case caps.Applicant && freelancer == me:
			err = candidacy.WithdrawApplicationFunc(id, sec)
		default:
			return nil, bizerror.ErrForbidden
		}

	default:
		return nil, bizerror.ErrForbidden
	}

	if err != nil {
		return nil, err
	}
	return DetailProjectFunc(id, sec)
}
