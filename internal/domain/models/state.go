package models

// ListStatus is the lifecycle of one list view: Loading -> Ready | Error.
// Error goes back to Loading only through an explicit retry.
type ListStatus int

const (
	StatusLoading ListStatus = iota
	StatusReady
	StatusError
)

func (s ListStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// List is a snapshot of a list view. Items may be stale when Status is
// StatusError: a failed fetch keeps the previous rows.
type List[T any] struct {
	Items  []T
	Status ListStatus
	Error  string
}
