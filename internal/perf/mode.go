package perf

// Mode is a coarse effect budget.
type Mode int

const (
	ModeNormal Mode = iota
	ModeReduced
	ModeMinimal
)

const (
	ReduceBelowFPS  = 30.0
	MinimalBelowFPS = 15.0
	RestoreAboveFPS = 45.0
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeReduced:
		return "reduced"
	case ModeMinimal:
		return "minimal"
	}
	return "unknown"
}

// NextMode steps one level per check. fps <= 0 means "no data" and keeps the mode.
func NextMode(current Mode, fps float64) Mode {
	if fps <= 0 {
		return current
	}
	switch {
	case current == ModeNormal && fps < ReduceBelowFPS:
		return ModeReduced
	case current == ModeReduced && fps < MinimalBelowFPS:
		return ModeMinimal
	case current != ModeNormal && fps > RestoreAboveFPS:
		return ModeNormal
	}
	return current
}
