package utils

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"radruga/pkg/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared go-playground validator
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct runs struct tag validation and wraps failures in
// models.ErrInvalidInput with a readable field list.
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", models.ErrInvalidInput, strings.Join(fields, ", "))
}

// ValidateNickName checks the public nickname
func ValidateNickName(nick string) error {
	n := len([]rune(strings.TrimSpace(nick)))
	if n < 2 || n > 50 {
		return models.ErrInvalidInput
	}
	return nil
}
