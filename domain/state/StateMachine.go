package state

// StateMachine is a stateless table of named transitions between states.
type StateMachine struct {
	States      []State      `json:"states"`
	Transitions []Transition `json:"transitions"`
}

type Category uint

const (
	InBacklog Category = iota
	InProcess
	Done
)

type State struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// Terminal reports whether no further work is expected once a project reaches s.
func (s State) Terminal() bool {
	return s.Category == Done
}

type Transition struct {
	Name string `json:"name"`
	From State  `json:"from"`
	To   State  `json:"to"`
}

func NewStateMachine(states []State, transitions []Transition) *StateMachine {
	return &StateMachine{States: states, Transitions: transitions}
}

// AvailableTransitions filters transitions by state names, empty name matches any.
func (sm *StateMachine) AvailableTransitions(fromState string, toState string) []Transition {
	r := []Transition{}
	for _, transition := range sm.Transitions {
		if (fromState == "" || fromState == transition.From.Name) && (toState == "" || toState == transition.To.Name) {
			r = append(r, transition)
		}
	}
	return r
}

// Lookup returns the single transition between two named states.
func (sm *StateMachine) Lookup(fromState, toState string) (Transition, bool) {
	if fromState == "" || toState == "" {
		return Transition{}, false
	}
	matched := sm.AvailableTransitions(fromState, toState)
	if len(matched) != 1 {
		return Transition{}, false
	}
	return matched[0], true
}

func (sm *StateMachine) FindState(name string) (State, bool) {
	for _, s := range sm.States {
		if s.Name == name {
			return s, true
		}
	}
	return State{}, false
}
