// internal/app/system/inputval/inputval.go

// Package inputval validates request payload structs with struct tags:
//
//	type createInput struct {
//	    Title string `validate:"required,max=200" label:"Title"`
//	}
//
// Handlers surface Result.First() only; the first failing rule wins and
// no aggregate error list is returned to callers.
package inputval

import (
	"errors"
	"reflect"
	"strings"

	locale_en "github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New()

	en := locale_en.New()
	uni := ut.New(en, en)
	trans, _ = uni.GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}

	// Error messages use the `label` tag instead of the Go field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})
}

// Result holds validation error messages in field-declaration order.
type Result struct {
	errs []string
}

// HasErrors reports whether any rule failed.
func (r Result) HasErrors() bool {
	return len(r.errs) > 0
}

// First returns the first failing rule's message, or "".
func (r Result) First() string {
	if len(r.errs) == 0 {
		return ""
	}
	return r.errs[0]
}

// All returns every message, for logging.
func (r Result) All() []string {
	return r.errs
}

// Validate checks v's `validate` struct tags and returns translated,
// label-aware messages.
func Validate(v any) Result {
	err := validate.Struct(v)
	if err == nil {
		return Result{}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, strings.TrimSpace(fe.Translate(trans)))
		}
		return Result{errs: msgs}
	}
	return Result{errs: []string{err.Error()}}
}
