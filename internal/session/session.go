package session

import "sync"

// Step is the position of one user in the conversation.
type Step int

const (
	StepIdle Step = iota
	StepRegister
	StepMainMenu
	StepPeriod
	StepImportance
)

// State is the ephemeral per-user conversation state. Period and Importance
// accumulate answers while the user walks the data-entry steps; they are
// cleared on restart and on completion. Not persisted across restarts.
type State struct {
	Step       Step
	Period     string
	Importance string
}

// Manager keys conversation state by user identity so concurrent chats
// cannot cross-talk.
type Manager struct {
	mu     sync.RWMutex
	states map[int64]State
}

func NewManager() *Manager {
	return &Manager{states: make(map[int64]State)}
}

// Get returns the user's state, creating an Idle one on first contact.
func (m *Manager) Get(userID int64) State {
	m.mu.RLock()
	st, ok := m.states[userID]
	m.mu.RUnlock()
	if ok {
		return st
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.states[userID]; ok {
		return st
	}
	m.states[userID] = State{Step: StepIdle}
	return m.states[userID]
}

func (m *Manager) Set(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = st
}

func (m *Manager) Reset(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}
