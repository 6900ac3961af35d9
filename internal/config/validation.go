package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	foundationerrors "git.home.luguber.info/inful/ssio/internal/foundation/errors"
	"git.home.luguber.info/inful/ssio/internal/logfields"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// relpath: a path that stays relative, so it cannot name a location outside
		// the tree it is joined to by being absolute.
		_ = validate.RegisterValidation("relpath", func(fl validator.FieldLevel) bool {
			p := fl.Field().String()
			return !filepath.IsAbs(p) && !strings.HasPrefix(filepath.ToSlash(p), "/")
		})
	})
	return validate
}

// validateManifest checks field rules and that the manifest names at least one page.
func validateManifest(m *Manifest) error {
	if err := validateStruct(m); err != nil {
		return foundationerrors.ValidationError("invalid manifest").
			WithCause(err).
			WithContext(logfields.KeyPath, m.path).
			Build()
	}
	if len(m.Globs) == 0 && len(m.Manual) == 0 {
		return foundationerrors.ValidationError("manifest lists no pages: add globs or manual rules").
			WithContext(logfields.KeyPath, m.path).
			Build()
	}
	return nil
}

// validateStruct runs the struct tags and flattens failures into one readable error
// naming each field and the rule it broke.
func validateStruct(v any) error {
	err := structValidator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("validation failed on %s", strings.Join(fields, ", "))
}
