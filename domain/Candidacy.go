package domain

import (
	"github.com/fundwit/go-commons/types"
)

const (
	CandidacyPending  = "pending"
	CandidacyAccepted = "accepted"
	CandidacyRejected = "rejected"
)

// Application is a freelancer-initiated candidacy.
type Application struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	ProjectID    types.ID `json:"projectId" gorm:"unique_index:uix_application_project_freelancer"`
	FreelancerID types.ID `json:"freelancerId" gorm:"unique_index:uix_application_project_freelancer"`
	Message      string   `json:"message" sql:"type:TEXT"`
	Status       string   `json:"status"`

	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME"`
	RespondTime types.Timestamp `json:"respondTime" sql:"type:DATETIME"`
}

// Invitation is an owner-initiated candidacy.
type Invitation struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	ProjectID    types.ID `json:"projectId" gorm:"unique_index:uix_invitation_project_freelancer"`
	FreelancerID types.ID `json:"freelancerId" gorm:"unique_index:uix_invitation_project_freelancer"`
	OwnerID      types.ID `json:"ownerId"`
	Status       string   `json:"status"`

	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME"`
	RespondTime types.Timestamp `json:"respondTime" sql:"type:DATETIME"`
}

type ApplicationCreation struct {
	Message string `json:"message" binding:"lte=2000"`
}

type ApplicationManagement struct {
	ApplicationID types.ID `json:"applicationId" binding:"required"`
	Action        string   `json:"action" binding:"required,oneof=accept reject"`
}

type InvitationCreation struct {
	FreelancerID types.ID `json:"freelancerId" binding:"required"`
}

type InvitationResponse struct {
	Action string `json:"action" binding:"required,oneof=accept reject"`
}

type InvitationWithdrawal struct {
	FreelancerID types.ID `form:"freelancerId" binding:"required"`
}
