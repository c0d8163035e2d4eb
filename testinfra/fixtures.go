package testinfra

import (
	"skillbridge/account"
	"skillbridge/authority"
	"skillbridge/domain"
	"skillbridge/domain/state"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
)

// CreateProfile stores u as is, filling the creation time.
func CreateProfile(t *testing.T, db *gorm.DB, u account.User) *account.User {
	if u.Name == "" {
		u.Name = "user" + u.ID.String()
	}
	if u.Skills == nil {
		u.Skills = domain.Skills{}
	}
	u.CreateTime = types.CurrentTimestamp()
	assert.Nil(t, db.Create(&u).Error)
	return &u
}

func CreateOwner(t *testing.T, db *gorm.DB, id types.ID) *account.User {
	return CreateProfile(t, db, account.User{ID: id, Role: authority.RoleTeacher})
}

// CreateFreelancer stores an open-to-work student profile.
func CreateFreelancer(t *testing.T, db *gorm.DB, id types.ID, basePrice int64, skills ...string) *account.User {
	return CreateProfile(t, db, account.User{ID: id, Role: authority.RoleStudent,
		Skills: domain.NewSkills(skills), BasePrice: basePrice, OpenToWork: true})
}

// CreateProject stores p, defaulting to an open project due in a week.
func CreateProject(t *testing.T, db *gorm.DB, p domain.Project) *domain.Project {
	if p.Title == "" {
		p.Title = "project " + p.ID.String()
	}
	if p.Status == "" {
		p.Status = state.StatusOpen
	}
	if p.RequiredSkills == nil {
		p.RequiredSkills = domain.Skills{}
	}
	if time.Time(p.Deadline).IsZero() {
		p.Deadline = types.Timestamp(time.Now().Add(7 * 24 * time.Hour).Round(time.Second))
	}
	p.CreateTime = types.CurrentTimestamp()
	p.UpdateTime = p.CreateTime
	assert.Nil(t, db.Create(&p).Error)
	return &p
}

func CreateOpenProject(t *testing.T, db *gorm.DB, id, owner types.ID, budget int64, skills ...string) *domain.Project {
	return CreateProject(t, db, domain.Project{ID: id, OwnerID: owner, Budget: budget, RequiredSkills: domain.NewSkills(skills)})
}
