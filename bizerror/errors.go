package bizerror

import (
	"errors"
	"fmt"
	"net/http"
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

const CommonInternalServerError = "common.internal_server_error"

var (
	ErrUnauthenticated = errors.New("unauthenticated")

	ErrForbidden      = &AuthorizationError{Code: "security.forbidden", Message: "access forbidden"}
	ErrNotOwner       = &AuthorizationError{Code: "project.not_owner", Message: "only the project owner can do this"}
	ErrNotAssignee    = &AuthorizationError{Code: "project.not_assignee", Message: "only the assigned freelancer can do this"}
	ErrOwnerRoleOnly  = &AuthorizationError{Code: "project.owner_role_required", Message: "only teachers and alumni can create projects"}
	ErrNotCandidacyOf = &AuthorizationError{Code: "candidacy.not_initiator", Message: "only the initiator of the candidacy can do this"}

	ErrSkillMismatch   = &ValidationError{Code: "candidacy.skill_mismatch", Message: "skills do not match"}
	ErrBudgetTooLow    = &ValidationError{Code: "candidacy.budget_too_low", Message: "budget below your minimum"}
	ErrSelfCandidacy   = &ValidationError{Code: "candidacy.self", Message: "project owner can not be a candidate of own project"}
	ErrNotFreelancer   = &ValidationError{Code: "candidacy.not_freelancer", Message: "only students can be candidates"}
	ErrNotOpenToWork   = &ValidationError{Code: "candidacy.not_open_to_work", Message: "you are not open to work"}
	ErrInvalidProgress = &ValidationError{Code: "project.invalid_progress", Message: "progress must be an integer between 0 and 100"}
	ErrDeadlinePassed  = &ValidationError{Code: "project.deadline_not_future", Message: "deadline must be in the future"}
	ErrAmbiguousPatch  = &ValidationError{Code: "project.ambiguous_patch", Message: "exactly one update operation is required"}

	ErrProjectNotOpen             = &ConflictError{Code: "project.not_open", Message: "project is not open"}
	ErrAlreadyAssigned            = &ConflictError{Code: "project.already_assigned", Message: "project is already assigned to this freelancer"}
	ErrAlreadyApplied             = &ConflictError{Code: "candidacy.already_applied", Message: "you have already applied to this project"}
	ErrAlreadyInvited             = &ConflictError{Code: "candidacy.already_invited", Message: "freelancer has already been invited to this project"}
	ErrCandidacyNotPending        = &ConflictError{Code: "candidacy.not_pending", Message: "candidacy is no longer pending"}
	ErrNoPendingCandidacy         = &ConflictError{Code: "candidacy.none_pending", Message: "freelancer has no pending candidacy for this project"}
	ErrFreelancerAlreadyRequested = &ConflictError{Code: "project.freelancer_already_requested", Message: "another freelancer has already been requested"}
	ErrConcurrentModification     = &ConflictError{Code: "common.concurrent_modification", Message: "record was modified concurrently, please retry"}

	ErrProjectNotFound      = &NotFoundError{Entity: "project"}
	ErrApplicationNotFound  = &NotFoundError{Entity: "application"}
	ErrInvitationNotFound   = &NotFoundError{Entity: "invitation"}
	ErrUserNotFound         = &NotFoundError{Entity: "user"}
	ErrNotificationNotFound = &NotFoundError{Entity: "notification"}
)

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

// ValidationError is malformed or out-of-range input, including failed eligibility rules.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
func (e *ValidationError) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: e.Code, Message: e.Message}
}

type AuthorizationError struct {
	Code    string
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}
func (e *AuthorizationError) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusForbidden, Code: e.Code, Message: e.Message}
}

// StateTransitionError is an illegal status move for the acting role.
type StateTransitionError struct {
	Role string
	From string
	To   string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("transition from %s to %s is not allowed for %s", e.From, e.To, e.Role)
}
func (e *StateTransitionError) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "project.illegal_transition", Message: e.Error(),
		Data: map[string]string{"role": e.Role, "from": e.From, "to": e.To}}
}

// ConflictError means a race was lost or the record is already resolved.
type ConflictError struct {
	Code    string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}
func (e *ConflictError) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusConflict, Code: e.Code, Message: e.Message}
}

type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}
func (e *NotFoundError) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusNotFound, Code: "common.record_not_found", Message: e.Error()}
}

// DependencyError is a failed best-effort side effect. It is logged, never returned by a primary operation.
type DependencyError struct {
	Component string
	Cause     error
}

func (e *DependencyError) Error() string {
	if e.Cause == nil {
		return e.Component + " failed"
	}
	return e.Component + " failed: " + e.Cause.Error()
}
func (e *DependencyError) Unwrap() error {
	return e.Cause
}
func (e *DependencyError) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusInternalServerError, Code: "common.dependency_failed", Message: e.Error(), Cause: e.Cause}
}
