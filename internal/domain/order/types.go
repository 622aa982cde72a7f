package order

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

// Every status except pending is terminal; terminal orders never change again.
func (s Status) IsTerminal() bool {
	return s.IsValid() && s != StatusPending
}

// CanTransitionTo enforces the monotonic state machine: the only legal
// transitions leave pending.
func (s Status) CanTransitionTo(next Status) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	return s == StatusPending && next != StatusPending
}

type FailureReason string

const (
	ReasonOutOfStock FailureReason = "out_of_stock"
	ReasonTimeout    FailureReason = "timeout"
)

func (r FailureReason) String() string {
	return string(r)
}
