package project

import (
	"skillbridge/bizerror"
	"skillbridge/client/es"
	"skillbridge/domain"
	"skillbridge/domain/candidacy"
	"skillbridge/domain/state"
	"skillbridge/event"
	"skillbridge/idgen"
	"skillbridge/indices/search"
	"skillbridge/infra/metrics"
	"skillbridge/misc"
	"skillbridge/persistence"
	"skillbridge/session"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	projectIdWorker = idgen.NewWorker()

	CreateProjectFunc = CreateProject
	QueryProjectsFunc = QueryProjects
	DetailProjectFunc = DetailProject
	DeleteProjectFunc = DeleteProject
	UpdateStatusFunc  = UpdateStatus
	PatchProjectFunc  = PatchProject
)

var errUnknownStatus = &bizerror.ValidationError{Code: "project.unknown_status", Message: "unknown project status"}

func CreateProject(c *domain.ProjectCreation, sec *session.Session) (*domain.ProjectDetail, error) {
	if !sec.Perms.CanOwnProjects() {
		return nil, bizerror.ErrOwnerRoleOnly
	}
	if !time.Time(c.Deadline).After(time.Now()) {
		return nil, bizerror.ErrDeadlinePassed
	}
	skills := domain.NewSkills(c.RequiredSkills)
	if len(skills) == 0 {
		return nil, &bizerror.ValidationError{Code: "project.skills_required", Message: "at least one required skill is needed"}
	}

	now := types.CurrentTimestamp()
	p := domain.Project{ID: idgen.NextID(projectIdWorker), Title: strings.TrimSpace(c.Title), Description: c.Description,
		Budget: c.Budget, Deadline: c.Deadline, RequiredSkills: skills, Status: state.StatusOpen,
		OwnerID: sec.Identity.ID, CreateTime: now, UpdateTime: now}

	var record *event.EventRecord
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		var err error
		record, err = event.CreateProjectEvent(event.EventCategoryProjectCreated, &p, &sec.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	event.PostCommit(record)
	return &domain.ProjectDetail{Project: p, FreelancersRequested: []types.ID{}}, nil
}

// QueryProjects lists projects newest first. Free text goes to the search index when it is
// enabled, otherwise it is matched against title and description.
func QueryProjects(q *domain.ProjectQuery, sec *session.Session) (*misc.PagedBody, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	query := db.Model(&domain.Project{})

	if q.Status != "" {
		if !state.IsValidStatus(q.Status) {
			return nil, errUnknownStatus
		}
		query = query.Where("status = ?", q.Status)
	}
	if q.OwnerID != 0 {
		query = query.Where("owner_id = ?", q.OwnerID)
	}
	if q.AssignedTo != 0 {
		query = query.Where("assigned_to = ?", q.AssignedTo)
	}
	if q.RequestToFreelancer != 0 {
		query = query.Where("request_to_freelancer = ?", q.RequestToFreelancer)
	}
	if q.FreelancerRequested != 0 {
		query = query.Where("id IN (SELECT project_id FROM applications WHERE freelancer_id = ? AND status = ?)",
			q.FreelancerRequested, domain.CandidacyPending)
	}
	if q.MinBudget > 0 {
		query = query.Where("budget >= ?", q.MinBudget)
	}
	if q.MaxBudget > 0 {
		query = query.Where("budget <= ?", q.MaxBudget)
	}
	if skills := domain.NewSkills(strings.Split(q.Skills, ",")); len(skills) > 0 {
		clauses := make([]string, 0, len(skills))
		args := make([]interface{}, 0, len(skills))
		for _, s := range skills {
			clauses = append(clauses, "LOWER(required_skills) LIKE ?")
			args = append(args, "%\""+s+"\"%")
		}
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	if text := strings.TrimSpace(q.Query); text != "" {
		if es.Enabled() {
			ids, err := search.SearchProjectIDsFunc(sec.Ctx(), text)
			if err != nil {
				return nil, &bizerror.DependencyError{Component: "project search", Cause: err}
			}
			if len(ids) == 0 {
				return &misc.PagedBody{List: []domain.ProjectDetail{}, Total: 0}, nil
			}
			query = query.Where("id IN (?)", ids)
		} else {
			like := "%" + text + "%"
			query = query.Where("(title LIKE ? OR description LIKE ?)", like, like)
		}
	}

	var total uint64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	_, size := q.Normalize()
	var projects []domain.Project
	if err := query.Order("create_time DESC").Order("id DESC").Offset(q.Offset()).Limit(size).Find(&projects).Error; err != nil {
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
	return &misc.PagedBody{List: details, Total: total}, nil
}

func DetailProject(id types.ID, sec *session.Session) (*domain.ProjectDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
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

// DeleteProject removes an open project with its candidacies. Only the owner may do it.
func DeleteProject(id types.ID, sec *session.Session) error {
	var record *event.EventRecord
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		p, err := domain.LoadProject(persistence.ForUpdate(tx), id)
		if err != nil {
			return err
		}
		if p.OwnerID != sec.Identity.ID {
			return bizerror.ErrNotOwner
		}
		if p.Status != state.StatusOpen {
			return bizerror.ErrProjectNotOpen
		}
		candidates, err := candidacy.PendingCandidates(tx, id, 0)
		if err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&domain.Application{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&domain.Invitation{}).Error; err != nil {
			return err
		}
		db := tx.Where("id = ? AND status = ?", id, state.StatusOpen).Delete(&domain.Project{})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		record, err = event.CreateProjectEvent(event.EventCategoryProjectDeleted, p, &sec.Identity, tx,
			event.WithRivals(candidates))
		return err
	})
	if err != nil {
		return err
	}
	event.PostCommit(record)
	return nil
}

// UpdateStatus moves a project along the lifecycle on behalf of its owner or assignee.
func UpdateStatus(id types.ID, to string, sec *session.Session) (*domain.ProjectDetail, error) {
	if !state.IsValidStatus(to) {
		return nil, errUnknownStatus
	}

	var record *event.EventRecord
	var from, role string
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		p, err := domain.LoadProject(persistence.ForUpdate(tx), id)
		if err != nil {
			return err
		}
		switch {
		case p.OwnerID == sec.Identity.ID:
			role = state.RoleOwner
		case p.AssignedTo != 0 && p.AssignedTo == sec.Identity.ID:
			role = state.RoleAssignee
		default:
			return bizerror.ErrForbidden
		}
		from = p.Status
		if role == state.RoleOwner && from == to && state.IsTerminal(to) {
			return nil
		}
		if _, err := state.CheckTransition(role, from, to); err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		changes := map[string]interface{}{"status": to, "update_time": now}
		opts := []event.Option{event.WithUpdatedProperty(event.PropertyStatus, from, to)}
		if to == state.StatusRevision && p.Progress != 0 {
			opts = append(opts, event.WithUpdatedInt(event.PropertyProgress, p.Progress, 0))
		}
		if to == state.StatusRevision {
			changes["progress"] = 0
			p.Progress = 0
		}
		if state.IsTerminal(to) && time.Time(p.CompletedTime).IsZero() {
			changes["completed_time"] = now
			p.CompletedTime = now
		}
		if from == state.StatusOpen && to == state.StatusCompleted {
			rivals, err := candidacy.PendingCandidates(tx, id, 0)
			if err != nil {
				return err
			}
			if err := candidacy.ResolvePending(tx, id, 0, now); err != nil {
				return err
			}
			changes["request_to_freelancer"] = 0
			p.RequestToFreelancer = 0
			opts = append(opts, event.WithRivals(rivals))
		}

		db := tx.Model(&domain.Project{}).Where("id = ? AND status = ?", id, from).Updates(changes)
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		p.Status, p.UpdateTime = to, now
		record, err = event.CreateProjectEvent(event.EventCategoryStatusChanged, p, &sec.Identity, tx, opts...)
		return err
	})
	if err != nil {
		return nil, err
	}
	if record != nil {
		metrics.RecordTransition(from, to, role)
		event.PostCommit(record)
	}
	return DetailProjectFunc(id, sec)
}
