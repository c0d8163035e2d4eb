package state_test

import (
	"skillbridge/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	var (
		stateMachine *state.StateMachine
		draft        = state.State{Name: "DRAFT", Category: state.InBacklog}
		review       = state.State{Name: "REVIEW", Category: state.InProcess}
		published    = state.State{Name: "PUBLISHED", Category: state.Done}
	)

	BeforeEach(func() {
		//            DRAFT        REVIEW       PUBLISHED
		// DRAFT      -            V (submit)   X
		// REVIEW     V (reject)   -            V (publish)
		// PUBLISHED  X            X            -
		stateMachine = state.NewStateMachine(
			[]state.State{draft, review, published},
			[]state.Transition{
				{Name: "submit", From: draft, To: review},
				{Name: "reject", From: review, To: draft},
				{Name: "publish", From: review, To: published},
			})
	})

	Describe("AvailableTransitions", func() {
		It("should filter by from state", func() {
			Ω(stateMachine.AvailableTransitions("REVIEW", "")).Should(Equal([]state.Transition{
				{Name: "reject", From: review, To: draft},
				{Name: "publish", From: review, To: published},
			}))
			Ω(stateMachine.AvailableTransitions("PUBLISHED", "")).Should(BeEmpty())
		})

		It("should filter by to state", func() {
			Ω(stateMachine.AvailableTransitions("", "DRAFT")).Should(Equal([]state.Transition{
				{Name: "reject", From: review, To: draft},
			}))
			Ω(stateMachine.AvailableTransitions("DRAFT", "PUBLISHED")).Should(BeEmpty())
		})

		It("should return nothing for unknown state", func() {
			Ω(len(stateMachine.AvailableTransitions("UNKNOWN", ""))).Should(Equal(0))
		})
	})

	Describe("Lookup", func() {
		It("should resolve a single transition", func() {
			t, found := stateMachine.Lookup("REVIEW", "PUBLISHED")
			Ω(found).Should(BeTrue())
			Ω(t.Name).Should(Equal("publish"))

			_, found = stateMachine.Lookup("DRAFT", "PUBLISHED")
			Ω(found).Should(BeFalse())
			_, found = stateMachine.Lookup("", "DRAFT")
			Ω(found).Should(BeFalse())
		})
	})

	Describe("FindState", func() {
		It("should find declared states only", func() {
			s, found := stateMachine.FindState("REVIEW")
			Ω(found).Should(BeTrue())
			Ω(s).Should(Equal(review))

			_, found = stateMachine.FindState("ARCHIVED")
			Ω(found).Should(BeFalse())
			Ω(published.Terminal()).Should(BeTrue())
			Ω(review.Terminal()).Should(BeFalse())
		})
	})
})
