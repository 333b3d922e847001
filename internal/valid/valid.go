// Public domain.

// Package valid wraps go-playground/validator with English messages that
// name fields by their serialized keys.
package valid

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldLevel aliases validator.FieldLevel for custom rules.
type FieldLevel = validator.FieldLevel

// Checker validates structs.  It is safe for concurrent use once all
// rules are registered.
type Checker struct {
	v  *validator.Validate
	tr ut.Translator
}

// New returns a Checker naming fields by struct tag key, such as "json" or
// "yaml".
func New(tagKey string) *Checker {
	enLoc := en.New()
	tr, _ := ut.New(enLoc, enLoc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get(tagKey)
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		if tag == "" || tag == "-" {
			return fld.Name
		}
		return tag
	})
	_ = en_translations.RegisterDefaultTranslations(v, tr)
	return &Checker{v: v, tr: tr}
}

// Register adds a custom rule.  msg is the failure message with {0} for
// the field name and {1} for its value.
func (c *Checker) Register(tag string, fn func(FieldLevel) bool, msg string) error {
	if err := c.v.RegisterValidation(tag, fn); err != nil {
		return err
	}
	return c.v.RegisterTranslation(tag, c.tr,
		func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			var val string
			if s, ok := fe.Value().(string); ok {
				val = fmt.Sprintf("%q", s)
			} else {
				val = fmt.Sprint(fe.Value())
			}
			m, _ := ut.T(tag, fe.Field(), val)
			return m
		},
	)
}

// Struct validates x.  The error describes the first bad value, named by
// its dotted key path without the root type name.
func (c *Checker) Struct(x any) error {
	err := c.v.Struct(x)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	path := fe.Namespace()
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}
	return errors.New(strings.Replace(fe.Translate(c.tr), fe.Field(), path, 1))
}
