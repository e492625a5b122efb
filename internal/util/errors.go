package util

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrPublic is an error whose message can be echoed back to an user as-is.
type ErrPublic string

func (e ErrPublic) Error() string {
	return string(e)
}

// Is makes errors.Is(err, ErrPublic("")) match any public error.
func (e ErrPublic) Is(v error) bool {
	_, ok := v.(ErrPublic)
	return ok
}

// IsPublic returns true if err or one of the errors it wraps is an ErrPublic.
func IsPublic(err error) bool {
	return errors.Is(err, ErrPublic(""))
}

func ConcatErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	filtered := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err.Error())
		}
	}

	if len(filtered) == 0 {
		return nil
	}

	return errors.New(strings.Join(filtered, "; "))
}
