package domain

import "github.com/juju/errors"

// Error kinds surfaced by the store, engine and bus. Test with errors.Is.
const (
	// ErrNotFound reports an id absent from its collection.
	ErrNotFound = errors.NotFound
	// ErrDuplicateID reports an insert whose id already exists.
	ErrDuplicateID = errors.AlreadyExists
	// ErrInvalidArgument reports malformed or type-mismatched arguments.
	ErrInvalidArgument = errors.NotValid
	// ErrSubscriberGone reports delivery to a cancelled subscriber. It is
	// counted and dropped, never returned to a publisher.
	ErrSubscriberGone = errors.ConstError("subscriber gone")
)

// NotFoundError builds a NotFound error for an entity id.
func NotFoundError(entity EntityType, id string) error {
	return errors.NotFoundf("%s %q", entity, id)
}

// DuplicateIDError builds a DuplicateID error for an entity id.
func DuplicateIDError(entity EntityType, id string) error {
	return errors.AlreadyExistsf("%s %q", entity, id)
}

// InvalidArgumentf builds an InvalidArgument error.
func InvalidArgumentf(format string, args ...any) error {
	return errors.NotValidf(format, args...)
}
