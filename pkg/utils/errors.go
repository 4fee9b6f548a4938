package utils

import (
	"errors"
)

// CombineErrors joins the non-nil errors, or returns nil
func CombineErrors(errs ...error) error {
	return errors.Join(errs...)
}
