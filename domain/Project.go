package domain

import (
	"encoding/json"
	"skillbridge/misc"

	"github.com/fundwit/go-commons/types"
)

type Project struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Title          string          `json:"title" sql:"type:VARCHAR(200) NOT NULL"`
	Description    string          `json:"description" sql:"type:TEXT"`
	Budget         int64           `json:"budget"`
	Deadline       types.Timestamp `json:"deadline" sql:"type:DATETIME"`
	RequiredSkills Skills          `json:"requiredSkills" sql:"type:TEXT"`

	Status   string `json:"status" gorm:"index:idx_project_status"`
	Progress int    `json:"progress"`

	OwnerID             types.ID `json:"ownerId" gorm:"index:idx_project_owner"`
	AssignedTo          types.ID `json:"assignedTo" gorm:"index:idx_project_assigned_to"`
	RequestToFreelancer types.ID `json:"requestToFreelancer"`

	CompletedTime types.Timestamp `json:"completedTime" sql:"type:DATETIME"`
	CreateTime    types.Timestamp `json:"createTime" sql:"type:DATETIME"`
	UpdateTime    types.Timestamp `json:"updateTime" sql:"type:DATETIME"`
}

// ProjectDetail is a project with its derived candidacy view.
type ProjectDetail struct {
	Project

	// freelancers with a pending application
	FreelancersRequested []types.ID `json:"freelancersRequested"`
}

type ProjectCreation struct {
	Title          string          `json:"title" binding:"required,lte=200"`
	Description    string          `json:"description" binding:"lte=5000"`
	Budget         int64           `json:"budget" binding:"required,gte=100"`
	Deadline       types.Timestamp `json:"deadline"`
	RequiredSkills []string        `json:"requiredSkills" binding:"required,skills"`
}

type ProjectQuery struct {
	Status              string   `form:"status"`
	OwnerID             types.ID `form:"owner"`
	AssignedTo          types.ID `form:"assignedTo"`
	RequestToFreelancer types.ID `form:"requestToFreelancer"`
	FreelancerRequested types.ID `form:"freelancerRequested"`
	Skills              string   `form:"skills"`
	MinBudget           int64    `form:"minBudget" binding:"gte=0"`
	MaxBudget           int64    `form:"maxBudget" binding:"gte=0"`
	Query               string   `form:"query" binding:"lte=200"`

	misc.PageQuery
}

// ProjectPatch carries exactly one update operation. Pointer fields distinguish
// absent keys from explicit values; RequestToFreelancer uses a raw-presence flag
// because JSON null is meaningful there.
type ProjectPatch struct {
	Status                  *string   `json:"status"`
	Progress                *float64  `json:"progress"`
	AssignedTo              *types.ID `json:"assignedTo"`
	RequestToFreelancer     *types.ID `json:"requestToFreelancer"`
	RequestToFreelancerSet  bool      `json:"-"`
	ApplyToProject          *bool     `json:"applyToProject"`
	RemoveFreelancerRequest *types.ID `json:"removeFreelancerRequest"`
	Message                 string    `json:"message" binding:"lte=2000"`
}

// Operations counts the update operations present in the patch.
func (p *ProjectPatch) Operations() int {
	n := 0
	if p.Status != nil {
		n++
	}
	if p.Progress != nil {
		n++
	}
	if p.AssignedTo != nil {
		n++
	}
	if p.RequestToFreelancerSet {
		n++
	}
	if p.ApplyToProject != nil {
		n++
	}
	if p.RemoveFreelancerRequest != nil {
		n++
	}
	return n
}

func (p *ProjectPatch) UnmarshalJSON(data []byte) error {
	type patchAlias ProjectPatch
	var alias patchAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	_, alias.RequestToFreelancerSet = keys["requestToFreelancer"]
	*p = ProjectPatch(alias)
	return nil
}
