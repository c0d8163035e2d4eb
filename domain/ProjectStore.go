package domain

import (
	"errors"
	"skillbridge/bizerror"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// LoadProject reads a project with the given handle, which may be a locking transaction.
func LoadProject(db *gorm.DB, id types.ID) (*Project, error) {
	project := Project{}
	if err := db.Where(&Project{ID: id}).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrProjectNotFound
		}
		return nil, err
	}
	if project.RequiredSkills == nil {
		project.RequiredSkills = Skills{}
	}
	return &project, nil
}
