package resource

// Status is the load state of a resource handle.
type Status int

// Handle states. Unloaded only occurs on handles that were never
// requested, every requested handle starts out Pending and commits to
// Ok or LoadError. Only an explicit Reload leaves a terminal state.
const (
	StatusUnloaded Status = iota
	StatusPending
	StatusOk
	StatusLoadError
)

// String implements fmt.Stringer
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusOk:
		return "Ok"
	case StatusLoadError:
		return "LoadError"
	default:
		return "Unloaded"
	}
}

// Terminal reports whether the status is a resting state that a Wait
// call returns on.
func (s Status) Terminal() bool {
	return s == StatusOk || s == StatusLoadError
}

// result is what a waiter receives when a pending handle commits.
type result struct {
	payload any
	err     error
}
