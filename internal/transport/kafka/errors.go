package kafka

import "errors"

// errPermanent tags handler failures that no redelivery can fix.
var errPermanent = errors.New("permanent")

type permanentError struct{ err error }

func (e permanentError) Error() string   { return e.err.Error() }
func (e permanentError) Unwrap() []error   { return []error{e.err, errPermanent} }

// Permanent marks err as unrecoverable for the record at hand: a payload that
// does not decode or fails validation. Nil stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err, or anything it wraps, went through Permanent.
func IsPermanent(err error) bool {
	return errors.Is(err, errPermanent)
}
