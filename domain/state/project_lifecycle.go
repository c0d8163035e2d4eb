package state

import (
	"skillbridge/bizerror"
)

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusRevision   = "revision"
	StatusAwaiting   = "awaiting"
	StatusCompleted  = "completed"
)

const (
	RoleOwner    = "owner"
	RoleAssignee = "freelancer"
)

var (
	Open       = State{Name: StatusOpen, Category: InBacklog}
	InProgress = State{Name: StatusInProgress, Category: InProcess}
	Revision   = State{Name: StatusRevision, Category: InProcess}
	Awaiting   = State{Name: StatusAwaiting, Category: InProcess}
	Completed  = State{Name: StatusCompleted, Category: Done}

	ProjectStates = []State{Open, InProgress, Revision, Awaiting, Completed}
)

// TransitionAssign is only taken by the assignment coordinator.
const TransitionAssign = "assign"

var OwnerStateMachine = NewStateMachine(ProjectStates, []Transition{
	{Name: TransitionAssign, From: Open, To: InProgress},
	{Name: "close", From: Open, To: Completed},
	{Name: "request-revision", From: InProgress, To: Revision},
	{Name: "await-review", From: InProgress, To: Awaiting},
	{Name: "complete", From: InProgress, To: Completed},
	{Name: "resume", From: Revision, To: InProgress},
	{Name: "await-review", From: Revision, To: Awaiting},
	{Name: "complete", From: Revision, To: Completed},
	{Name: "complete", From: Awaiting, To: Completed},
	{Name: "request-revision", From: Awaiting, To: Revision},
})

var AssigneeStateMachine = NewStateMachine(ProjectStates, []Transition{
	{Name: "submit", From: InProgress, To: Awaiting},
	{Name: "submit", From: Revision, To: Awaiting},
})

var machines = map[string]*StateMachine{
	RoleOwner:    OwnerStateMachine,
	RoleAssignee: AssigneeStateMachine,
}

// ForRole returns the transition table that governs direct status writes by role.
func ForRole(role string) (*StateMachine, bool) {
	sm, found := machines[role]
	return sm, found
}

func IsValidStatus(status string) bool {
	_, found := OwnerStateMachine.FindState(status)
	return found
}

// IsTerminal reports whether status is a known final status.
func IsTerminal(status string) bool {
	s, found := OwnerStateMachine.FindState(status)
	return found && s.Terminal()
}

// CheckTransition validates a direct status write by role. The assign transition
// is rejected here, it is reachable only through assignment.
func CheckTransition(role, from, to string) (*Transition, error) {
	sm, found := ForRole(role)
	if !found {
		return nil, &bizerror.StateTransitionError{Role: role, From: from, To: to}
	}
	t, found := sm.Lookup(from, to)
	if !found || t.Name == TransitionAssign {
		return nil, &bizerror.StateTransitionError{Role: role, From: from, To: to}
	}
	return &t, nil
}

// TargetsFor lists the statuses role may move a project to from the given status.
func TargetsFor(role, from string) []string {
	r := []string{}
	sm, found := ForRole(role)
	if !found || from == "" {
		return r
	}
	for _, t := range sm.AvailableTransitions(from, "") {
		if t.Name != TransitionAssign {
			r = append(r, t.To.Name)
		}
	}
	return r
}
