package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrPersistence = errors.New("persistence failure")
)

func IsNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool  { return errors.Is(err, ErrValidation) }
func IsPersistence(err error) bool { return errors.Is(err, ErrPersistence) }

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func persistence(err error) error {
	if err == nil || IsNotFound(err) || IsValidation(err) || IsPersistence(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
