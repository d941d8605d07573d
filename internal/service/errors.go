package service

import (
	"errors"

	"github.com/iliyamo/immersive-venue-booking/internal/repository"
	"github.com/iliyamo/immersive-venue-booking/internal/validate"
)

// ErrSlotNotFound means no availability row matches the requested venue,
// experience, date and time.
var ErrSlotNotFound = errors.New("slot not found")

// ErrInvalidTransition rejects a booking status change that the lifecycle
// does not allow (e.g. cancelled -> confirmed).
var ErrInvalidTransition = errors.New("invalid status transition")

// Re-exported so handlers only need to import this package.
var (
	ErrNotFound         = repository.ErrNotFound
	ErrCapacityExceeded = repository.ErrCapacityExceeded
)

// ValidationErrors lists the rejected request fields.
type ValidationErrors = validate.ValidationErrors
