package candidacy

import (
	"skillbridge/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// PendingApplicants lists the freelancers with a pending application, oldest first.
func PendingApplicants(db *gorm.DB, projectId types.ID) ([]types.ID, error) {
	byProject, err := PendingApplicantsByProject(db, []types.ID{projectId})
	if err != nil {
		return nil, err
	}
	return byProject[projectId], nil
}

// PendingApplicantsByProject is PendingApplicants for many projects with one query.
// Every requested project has an entry.
func PendingApplicantsByProject(db *gorm.DB, projectIds []types.ID) (map[types.ID][]types.ID, error) {
	result := make(map[types.ID][]types.ID, len(projectIds))
	for _, id := range projectIds {
		result[id] = []types.ID{}
	}
	if len(projectIds) == 0 {
		return result, nil
	}
	var applications []domain.Application
	if err := db.Select("project_id, freelancer_id").
		Where("project_id IN (?) AND status = ?", projectIds, domain.CandidacyPending).
		Order("create_time ASC").Find(&applications).Error; err != nil {
		return nil, err
	}
	for _, a := range applications {
		result[a.ProjectID] = append(result[a.ProjectID], a.FreelancerID)
	}
	return result, nil
}

// PendingCandidates lists the distinct freelancers holding a pending application or invitation,
// except the given one.
func PendingCandidates(db *gorm.DB, projectId, except types.ID) ([]types.ID, error) {
	var applications []domain.Application
	if err := db.Select("freelancer_id").Where("project_id = ? AND status = ?", projectId, domain.CandidacyPending).
		Order("create_time ASC").Find(&applications).Error; err != nil {
		return nil, err
	}
	var invitations []domain.Invitation
	if err := db.Select("freelancer_id").Where("project_id = ? AND status = ?", projectId, domain.CandidacyPending).
		Order("create_time ASC").Find(&invitations).Error; err != nil {
		return nil, err
	}

	seen := map[types.ID]bool{except: true}
	ids := []types.ID{}
	add := func(id types.ID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, a := range applications {
		add(a.FreelancerID)
	}
	for _, i := range invitations {
		add(i.FreelancerID)
	}
	return ids, nil
}

// ResolvePending marks every pending application and invitation of the project rejected,
// except those of winner which are accepted. A zero winner rejects all.
func ResolvePending(tx *gorm.DB, projectId, winner types.ID, now types.Timestamp) error {
	for _, model := range []interface{}{&domain.Application{}, &domain.Invitation{}} {
		if winner != 0 {
			if err := tx.Model(model).
				Where("project_id = ? AND freelancer_id = ? AND status = ?", projectId, winner, domain.CandidacyPending).
				Updates(map[string]interface{}{"status": domain.CandidacyAccepted, "respond_time": now}).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(model).
			Where("project_id = ? AND freelancer_id <> ? AND status = ?", projectId, winner, domain.CandidacyPending).
			Updates(map[string]interface{}{"status": domain.CandidacyRejected, "respond_time": now}).Error; err != nil {
			return err
		}
	}
	return nil
}
