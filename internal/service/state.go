package service

import (
	"arkive/internal/domain/models"
)

// listState is one list view's state container. It is not synchronized;
// the owning service guards it with its own mutex.
type listState[T any] struct {
	items  []T
	status models.ListStatus
	err    string
	loaded bool // at least one fetch was attempted
}

func (l *listState[T]) begin() {
	l.status = models.StatusLoading
	l.loaded = true
}

func (l *listState[T]) succeed(items []T) {
	l.items = items
	l.status = models.StatusReady
	l.err = ""
}

// invalidate marks a Ready list for re-fetch. An Error list keeps its
// status and message; only Retry leaves Error.
func (l *listState[T]) invalidate() {
	if l.status == models.StatusReady {
		l.status = models.StatusLoading
	}
}

// fail records msg and keeps the previous items
func (l *listState[T]) fail(msg string) {
	l.status = models.StatusError
	l.err = msg
}

func (l *listState[T]) snapshot() models.List[T] {
	return models.List[T]{
		Items:  append([]T(nil), l.items...),
		Status: l.status,
		Error:  l.err,
	}
}

func (l *listState[T]) reset() {
	*l = listState[T]{}
}
