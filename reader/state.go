package reader

// State is a reader lifecycle stage.
//
//	Unconfigured -> Configured -> Open -> Closed -> Open ...
type State int

const (
	StateUnconfigured State = iota
	StateConfigured
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigured:
		return "configured"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
