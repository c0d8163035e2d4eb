package candidacy

import (
	"errors"
	"skillbridge/account"
	"skillbridge/authority"
	"skillbridge/bizerror"
	"skillbridge/domain"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// CheckEligibility reports the first rule that keeps freelancer from being a candidate of project.
// Applicants must be open to work, invitees need not.
func CheckEligibility(project *domain.Project, freelancer *account.User, requireOpenToWork bool) error {
	if freelancer.ID == project.OwnerID {
		return bizerror.ErrSelfCandidacy
	}
	if freelancer.Role != authority.RoleStudent {
		return bizerror.ErrNotFreelancer
	}
	if requireOpenToWork && !freelancer.OpenToWork {
		return bizerror.ErrNotOpenToWork
	}
	if !project.RequiredSkills.Intersects(freelancer.Skills) {
		return bizerror.ErrSkillMismatch
	}
	if project.Budget < freelancer.BasePrice {
		return bizerror.ErrBudgetTooLow
	}
	return nil
}

func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
