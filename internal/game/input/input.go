// Package input defines the normalized action signal the match consumes each
// tick and the edge detection applied to it.
package input

import "fmt"

// Action is one member of the fixed action set.
type Action int

const (
	Forward Action = iota
	Back
	Left
	Right
	Jump
	Attack
	Block
	Skill1
	Skill2
	Skill3
	actionCount
)

var actionNames = [actionCount]string{
	"forward", "back", "left", "right", "jump", "attack", "block", "skill1", "skill2", "skill3",
}

// String returns the action's config name.
func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// Actions returns every action in declaration order.
func Actions() []Action {
	out := make([]Action, actionCount)
	for i := range out {
		out[i] = Action(i)
	}
	return out
}

// SkillAction returns the skill action for slot index 0..2.
func SkillAction(index int) (Action, bool) {
	if index < 0 || index > 2 {
		return 0, false
	}
	return Skill1 + Action(index), true
}

// Source reports which actions are held. It is polled once per tick.
type Source interface {
	IsActionActive(a Action) bool
}

// State is a settable Source. Held actions stay active until released;
// pulsed actions are active for exactly one Frame.
// It is not safe for concurrent use.
type State struct {
	held   [actionCount]bool
	pulsed [actionCount]bool
	frame  [actionCount]bool
}

// NewState returns a State with nothing held.
func NewState() *State { return &State{} }

// Press holds a until Release.
func (s *State) Press(a Action) {
	if a >= 0 && a < actionCount {
		s.held[a] = true
	}
}

// Release stops holding a.
func (s *State) Release(a Action) {
	if a >= 0 && a < actionCount {
		s.held[a] = false
	}
}

// Set presses or releases a.
func (s *State) Set(a Action, active bool) {
	if active {
		s.Press(a)
	} else {
		s.Release(a)
	}
}

// Pulse makes a active for the next Frame only. HUD buttons use this to
// relay one-shot attack and skill requests.
func (s *State) Pulse(a Action) {
	if a >= 0 && a < actionCount {
		s.pulsed[a] = true
	}
}

// Frame latches held and pulsed actions for one tick and clears the pulses.
func (s *State) Frame() {
	for i := range s.frame {
		s.frame[i] = s.held[i] || s.pulsed[i]
		s.pulsed[i] = false
	}
}

// IsActionActive reports whether a was active at the last Frame.
func (s *State) IsActionActive(a Action) bool {
	if a < 0 || a >= actionCount {
		return false
	}
	return s.frame[a]
}

// Edges tracks transitions between successive polls of a Source.
type Edges struct {
	prev [actionCount]bool
	cur  [actionCount]bool
}

// Poll samples every action from src.
func (e *Edges) Poll(src Source) {
	e.prev = e.cur
	for i := range e.cur {
		e.cur[i] = src.IsActionActive(Action(i))
	}
}

// Active reports whether a is held in the latest poll.
func (e *Edges) Active(a Action) bool { return a >= 0 && a < actionCount && e.cur[a] }

// Pressed reports whether a went from inactive to active in the latest poll.
func (e *Edges) Pressed(a Action) bool {
	return a >= 0 && a < actionCount && e.cur[a] && !e.prev[a]
}

// Released reports whether a went from active to inactive in the latest poll.
func (e *Edges) Released(a Action) bool {
	return a >= 0 && a < actionCount && !e.cur[a] && e.prev[a]
}
