package engine

import (
	"sync"

	"github.com/shetautnetjer/alienfan/internal/policy"
)

// Mode is the top-level engine state. There is no stopped-with-partial-
// state mode: every abnormal exit path routes through the shutdown
// restore sequence before the process ends.
type Mode string

const (
	// ModeIdle means no actuators are under active control.
	ModeIdle Mode = "idle"
	// ModeRunning means the control loop is driving actuators under the
	// currently selected policy.
	ModeRunning Mode = "running"
)

// State tracks what the engine has done: the active policy, the last
// applied duty per actuator and the per-tick error per actuator.
type State struct {
	mu sync.Mutex

	policy     policy.ControlPolicy
	applied    map[string]int
	lastErrors map[string]string
}

func NewState() *State {
	return &State{
		applied:    map[string]int{},
		lastErrors: map[string]string{},
	}
}

func (s *State) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.policy == nil {
		return ModeIdle
	}
	return ModeRunning
}

func (s *State) Policy() policy.ControlPolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

func (s *State) PolicyName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.policy == nil {
		return string(ModeIdle)
	}
	return s.policy.Name()
}

func (s *State) setPolicy(p policy.ControlPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = p
}

func (s *State) recordApplied(actuatorID string, duty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied[actuatorID] = duty
	delete(s.lastErrors, actuatorID)
}

func (s *State) recordError(actuatorID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErrors[actuatorID] = err.Error()
}

// Applied returns a copy of the last applied duty per actuator.
func (s *State) Applied() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	applied := make(map[string]int, len(s.applied))
	for id, duty := range s.applied {
		applied[id] = duty
	}
	return applied
}

// LastErrors returns a copy of the per-actuator error of the last tick.
func (s *State) LastErrors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	lastErrors := make(map[string]string, len(s.lastErrors))
	for id, message := range s.lastErrors {
		lastErrors[id] = message
	}
	return lastErrors
}
