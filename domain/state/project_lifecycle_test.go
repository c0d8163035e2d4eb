package state_test

import (
	"skillbridge/bizerror"
	"skillbridge/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var allStatuses = []string{state.StatusOpen, state.StatusInProgress, state.StatusRevision, state.StatusAwaiting, state.StatusCompleted}

var _ = Describe("Project lifecycle", func() {
	Describe("CheckTransition for owner", func() {
		allowed := map[string][]string{
			state.StatusOpen:       {state.StatusCompleted},
			state.StatusInProgress: {state.StatusRevision, state.StatusAwaiting, state.StatusCompleted},
			state.StatusRevision:   {state.StatusInProgress, state.StatusAwaiting, state.StatusCompleted},
			state.StatusAwaiting:   {state.StatusCompleted, state.StatusRevision},
			state.StatusCompleted:  {},
		}

		It("should accept exactly the owner table", func() {
			for _, from := range allStatuses {
				for _, to := range allStatuses {
					tr, err := state.CheckTransition(state.RoleOwner, from, to)
					if contains(allowed[from], to) {
						Ω(err).ShouldNot(HaveOccurred(), from+"->"+to)
						Ω(tr.From.Name).Should(Equal(from))
						Ω(tr.To.Name).Should(Equal(to))
					} else {
						Ω(err).Should(Equal(&bizerror.StateTransitionError{Role: state.RoleOwner, From: from, To: to}), from+"->"+to)
						Ω(tr).Should(BeNil())
					}
				}
			}
		})

		It("should reserve open to in_progress for assignment", func() {
			_, err := state.CheckTransition(state.RoleOwner, state.StatusOpen, state.StatusInProgress)
			Ω(err).Should(HaveOccurred())
			Ω(state.OwnerStateMachine.AvailableTransitions(state.StatusOpen, state.StatusInProgress)[0].Name).
				Should(Equal(state.TransitionAssign))
		})
	})

	Describe("CheckTransition for assigned freelancer", func() {
		It("should only allow requesting review", func() {
			for _, from := range allStatuses {
				for _, to := range allStatuses {
					_, err := state.CheckTransition(state.RoleAssignee, from, to)
					if to == state.StatusAwaiting && (from == state.StatusInProgress || from == state.StatusRevision) {
						Ω(err).ShouldNot(HaveOccurred())
					} else {
						Ω(err).Should(HaveOccurred(), from+"->"+to)
					}
				}
			}
		})
	})

	Describe("CheckTransition edge cases", func() {
		It("should reject unknown roles and statuses", func() {
			_, err := state.CheckTransition("admin", state.StatusInProgress, state.StatusAwaiting)
			Ω(err).Should(Equal(&bizerror.StateTransitionError{Role: "admin", From: state.StatusInProgress, To: state.StatusAwaiting}))

			_, err = state.CheckTransition(state.RoleOwner, state.StatusInProgress, "archived")
			Ω(err).Should(HaveOccurred())

			_, err = state.CheckTransition(state.RoleOwner, "", state.StatusCompleted)
			Ω(err).Should(HaveOccurred())
		})
	})

	Describe("TargetsFor", func() {
		It("should list reachable statuses", func() {
			Ω(state.TargetsFor(state.RoleOwner, state.StatusOpen)).Should(Equal([]string{state.StatusCompleted}))
			Ω(state.TargetsFor(state.RoleAssignee, state.StatusRevision)).Should(Equal([]string{state.StatusAwaiting}))
			Ω(state.TargetsFor(state.RoleAssignee, state.StatusAwaiting)).Should(BeEmpty())
			Ω(state.TargetsFor("guest", state.StatusOpen)).Should(BeEmpty())
		})
	})

	Describe("IsValidStatus", func() {
		It("should know every project status", func() {
			for _, s := range allStatuses {
				Ω(state.IsValidStatus(s)).Should(BeTrue())
			}
			Ω(state.IsValidStatus("archived")).Should(BeFalse())
		})

		It("should treat completed as the only terminal status", func() {
			for _, s := range allStatuses {
				Ω(state.IsTerminal(s)).Should(Equal(s == state.StatusCompleted))
			}
			Ω(state.IsTerminal("archived")).Should(BeFalse())
		})
	})

	Describe("ForRole", func() {
		It("should resolve the machine per role", func() {
			sm, found := state.ForRole(state.RoleOwner)
			Ω(found).Should(BeTrue())
			Ω(sm).Should(BeIdenticalTo(state.OwnerStateMachine))
			sm, found = state.ForRole(state.RoleAssignee)
			Ω(found).Should(BeTrue())
			Ω(sm).Should(BeIdenticalTo(state.AssigneeStateMachine))
			_, found = state.ForRole("admin")
			Ω(found).Should(BeFalse())
		})
	})
})

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
