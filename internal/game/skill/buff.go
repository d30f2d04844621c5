package skill

import "fmt"

// Buff is one active multiplicative stat modifier.
type Buff struct {
	Skill      string
	Stat       Stat
	Multiplier float64
	// Original is the stat value captured at cast time; it is what the stat is
	// restored to on expiry.
	Original  float64
	ExpiresAt float64
}

// BuffSet tracks the buffs active on one character, at most one per stat.
// It is not safe for concurrent use; the caller must serialise access.
type BuffSet struct {
	active map[Stat]*Buff
}

// NewBuffSet creates an empty BuffSet.
func NewBuffSet() *BuffSet {
	return &BuffSet{active: make(map[Stat]*Buff)}
}

// Has reports whether a buff on stat is active.
func (s *BuffSet) Has(stat Stat) bool {
	_, ok := s.active[stat]
	return ok
}

// Get returns the active buff on stat.
func (s *BuffSet) Get(stat Stat) (*Buff, bool) {
	b, ok := s.active[stat]
	return b, ok
}

// Add records b as active.
//
// Precondition: b must not be nil.
// Postcondition: Returns an error and leaves the set unchanged if a buff on b.Stat is already active.
func (s *BuffSet) Add(b *Buff) error {
	if existing, ok := s.active[b.Stat]; ok {
		return fmt.Errorf("buff on %s already active from %q", b.Stat, existing.Skill)
	}
	s.active[b.Stat] = b
	return nil
}

// Remove deletes and returns the buff on stat. No-op if absent.
//
// Postcondition: Has(stat) is false.
func (s *BuffSet) Remove(stat Stat) (*Buff, bool) {
	b, ok := s.active[stat]
	delete(s.active, stat)
	return b, ok
}

// All returns a snapshot slice of the active buffs.
func (s *BuffSet) All() []*Buff {
	out := make([]*Buff, 0, len(s.active))
	for _, b := range s.active {
		out = append(out, b)
	}
	return out
}

// Clear removes every buff and returns them.
func (s *BuffSet) Clear() []*Buff {
	out := s.All()
	s.active = make(map[Stat]*Buff)
	return out
}
