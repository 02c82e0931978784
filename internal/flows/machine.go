package flows

import (
	"errors"
	"fmt"
	"sync"
)

// State is the position of the client in the two-step auth flow.
type State string

const (
	StateAnonymous     State = "ANONYMOUS"
	StateOTPPending    State = "OTP_PENDING"
	StateAuthenticated State = "AUTHENTICATED"
)

// Event drives Machine transitions.
type Event string

const (
	EventChallengeIssued Event = "challenge_issued"
	EventChallengeFailed Event = "challenge_failed"
	EventVerified        Event = "verified"
	EventRegistered      Event = "registered"
	EventCancel          Event = "cancel"
	EventLogout          Event = "logout"
	EventRestored        Event = "restored"
	EventInvalidated     Event = "invalidated"
)

// ErrInvalidTransition is returned when an event is not accepted in the current state.
var ErrInvalidTransition = errors.New("invalid auth state transition")

var transitions = map[State]map[Event]State{
	StateAnonymous: {
		EventChallengeIssued: StateOTPPending,
		EventChallengeFailed: StateAnonymous,
		EventVerified:        StateAuthenticated,
		EventRegistered:      StateAnonymous,
		EventCancel:          StateAnonymous,
		EventLogout:          StateAnonymous,
		EventRestored:        StateAuthenticated,
		EventInvalidated:     StateAnonymous,
	},
	StateOTPPending: {
		EventChallengeIssued: StateOTPPending,
		EventChallengeFailed: StateAnonymous,
		EventVerified:        StateAuthenticated,
		EventRegistered:      StateAnonymous,
		EventCancel:          StateAnonymous,
		EventLogout:          StateAnonymous,
		EventRestored:        StateAuthenticated,
		EventInvalidated:     StateAnonymous,
	},
	StateAuthenticated: {
		EventCancel:      StateAuthenticated,
		EventLogout:      StateAnonymous,
		EventRestored:    StateAuthenticated,
		EventInvalidated: StateAnonymous,
	},
}

// Machine holds the current auth state and the pending challenge, if any.
// It is safe for concurrent use.
type Machine struct {
	mu        sync.RWMutex
	state     State
	challenge *Challenge
}

// NewMachine returns a Machine in the ANONYMOUS state.
func NewMachine() *Machine {
	return &Machine{state: StateAnonymous}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Challenge returns a copy of the pending challenge.
func (m *Machine) Challenge() (Challenge, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.challenge == nil {
		return Challenge{}, false
	}
	return *m.challenge, true
}

// Fire applies ev. ch becomes the pending challenge when the machine lands in
// OTP_PENDING; any other target state drops the challenge.
func (m *Machine) Fire(ev Event, ch *Challenge) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, ok := transitions[m.state][ev]
	if !ok {
		return m.state, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, m.state)
	}

	m.state = next
	if next == StateOTPPending && ch != nil {
		c := *ch
		m.challenge = &c
	} else if next != StateOTPPending {
		m.challenge = nil
	}
	return next, nil
}
