package domain

// RunState is the sniper lifecycle state.
type RunState int32

const (
	StateStopped RunState = iota
	StateRunning
	StatePaused
	StateError
)

func (s RunState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
