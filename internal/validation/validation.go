// Package validation wraps a shared validator with English messages keyed by json field names.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// Error is a single failed field. Field is empty for whole-value failures.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}

	return e.Field + ": " + e.Message
}

type service struct {
	validate   *validator.Validate
	translator ut.Translator
}

var (
	once sync.Once
	svc  *service
)

func get() *service {
	once.Do(func() {
		locale := en.New()
		trans, _ := ut.New(locale, locale).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}

			return name
		})

		_ = entranslations.RegisterDefaultTranslations(v, trans)
		registerShort(v, trans, "min", "{0} must be at least {1}")
		registerShort(v, trans, "max", "{0} must be at most {1}")

		svc = &service{validate: v, translator: trans}
	})

	return svc
}

// Struct validates v and reports the first failing field as *Error.
func Struct(v any) error {
	s := get()

	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &Error{Field: verrs[0].Field(), Message: verrs[0].Translate(s.translator)}
	}

	return &Error{Message: err.Error()}
}

// Var validates a single value against a tag such as "required,email".
func Var(field string, value any, tag string) error {
	s := get()

	err := s.validate.Var(value, tag)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		// Var errors carry no field name, so translations start with a blank placeholder.
		return &Error{Field: field, Message: field + verrs[0].Translate(s.translator)}
	}

	return &Error{Field: field, Message: err.Error()}
}

func registerShort(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error {
			return t.Add(tag, text, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}
