package task

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden           = errors.New("forbidden")
	ErrTaskNotFound        = errors.New("task not found")
	ErrInvalidStatusFilter = errors.New("invalid status filter")
)

// InvalidTransitionError возвращается при попытке перевести задачу
// из состояния, в котором запрошенный переход не определён.
type InvalidTransitionError struct {
	Current   Status
	Requested Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: task is %s, requested %s", e.Current, e.Requested)
}

func invalidTransition(current, requested Status) error {
	return &InvalidTransitionError{Current: current, Requested: requested}
}
