package indices

import (
	"context"
	"fmt"
	"skillbridge/client/es"
	"skillbridge/domain"
	"skillbridge/domain/candidacy"
	"skillbridge/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	ProjectIndexName = "projects"

	LoadProjectDetailFunc = LoadProjectDetail
	LoadProjectsPageFunc  = LoadProjectsPage
)

// ProjectIndexMappings types the fields that search and filtering rely on, the rest is
// mapped dynamically.
var ProjectIndexMappings = es.H{
	"properties": es.H{
		"title":          es.H{"type": "text"},
		"description":    es.H{"type": "text"},
		"requiredSkills": es.H{"type": "text", "fields": es.H{"raw": es.H{"type": "keyword"}}},
		"status":         es.H{"type": "keyword"},
		"ownerId":        es.H{"type": "keyword"},
		"assignedTo":     es.H{"type": "keyword"},
		"budget":         es.H{"type": "long"},
	},
}

func EnsureProjectIndex(ctx context.Context) error {
	return es.EnsureIndexFunc(ctx, ProjectIndexName, ProjectIndexMappings)
}

type ProjectDocument struct {
	domain.ProjectDetail
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexProjects(ctx context.Context, projects []domain.ProjectDetail) error {
	errs := BatchActionError{}
	for _, p := range projects {
		doc := ProjectDocument{ProjectDetail: p}
		if err := es.IndexFunc(ctx, ProjectIndexName, doc.ID, &doc); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index project %d %s: %v", doc.ID, doc.Title, err)
		} else {
			logrus.Debugf("index project %d %s successfully", doc.ID, doc.Title)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// LoadProjectDetail reads the current state of a project for indexing.
func LoadProjectDetail(ctx context.Context, id types.ID) (*domain.ProjectDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	p, err := domain.LoadProject(db, id)
	if err != nil {
		return nil, err
	}
	applicants, err := candidacy.PendingApplicants(db, id)
	if err != nil {
		return nil, err
	}
	return &domain.ProjectDetail{Project: *p, FreelancersRequested: applicants}, nil
}

// LoadProjectsPage reads projects in id order, page starts from 1.
func LoadProjectsPage(ctx context.Context, page, size int) ([]domain.ProjectDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	var projects []domain.Project
	if err := db.Order("id ASC").Offset((page - 1) * size).Limit(size).Find(&projects).Error; err != nil {
		return nil, err
	}
	ids := make([]types.ID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	applicants, err := candidacy.PendingApplicantsByProject(db, ids)
	if err != nil {
		return nil, err
	}
	details := make([]domain.ProjectDetail, 0, len(projects))
	for _, p := range projects {
		details = append(details, domain.ProjectDetail{Project: p, FreelancersRequested: applicants[p.ID]})
	}
	return details, nil
}
