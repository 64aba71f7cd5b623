package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var metricNamePart = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// The built-in timezone tag rejects "Local", which is our default.
	_ = validate.RegisterValidation("tzname", func(fl validator.FieldLevel) bool {
		_, err := time.LoadLocation(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("metricname", func(fl validator.FieldLevel) bool {
		return metricNamePart.MatchString(fl.Field().String())
	})
}

// Validate checks cfg and reports every failing field in one error wrapping
// ErrInvalidConfig.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value: %v)", e.Field(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}
