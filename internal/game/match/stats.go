package match

import "math"

// Outcome is how a match ended from the player's point of view.
type Outcome int

const (
	Undecided Outcome = iota
	Victory
	Defeat
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "undecided"
	}
}

// Stats accumulate over a match. Times are simulation seconds.
type Stats struct {
	DamageDealt  float64
	DamageTaken  float64
	SkillsUsed   int
	MeleeHits    int
	MeleeBlocked int
	StartTime    float64
	EndTime      float64
}

// Result is the end-of-match report.
type Result struct {
	Outcome Outcome
	// Duration is whole seconds between start and end.
	Duration    int
	DamageDealt int
	DamageTaken int
	SkillsUsed  int
	Stats       Stats
}

func newResult(o Outcome, s Stats) Result {
	return Result{
		Outcome:     o,
		Duration:    int(math.Floor(s.EndTime - s.StartTime)),
		DamageDealt: int(math.Floor(s.DamageDealt)),
		DamageTaken: int(math.Floor(s.DamageTaken)),
		SkillsUsed:  s.SkillsUsed,
		Stats:       s,
	}
}
