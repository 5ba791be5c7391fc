package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field name to the message shown under it.
type FieldErrors map[string]string

func (f FieldErrors) Has(field string) bool {
	_, ok := f[field]
	return ok
}

func (f FieldErrors) Add(field, message string) {
	if _, ok := f[field]; !ok {
		f[field] = message
	}
}

// BindForm binds a urlencoded form into out. On failure it returns the
// per-field messages, keyed by the form tag, for the page to re-render.
func BindForm(ctx *gin.Context, out interface{}) (FieldErrors, bool) {
	err := ctx.ShouldBindWith(out, binding.Form)
	if err != nil {
		return parseBindError(err, out), false
	}

	return nil, true
}

func parseBindError(err error, out interface{}) FieldErrors {
	rootType := baseStructType(out)
	fields := FieldErrors{}

	// validator errors (struct bind tags)
	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		for _, fieldError := range validatorError {
			field := formNameFromValidatorError(rootType, fieldError)
			fields.Add(field, validationMessage(fieldError.Tag(), fieldError.Param()))
		}
		return fields
	}

	// a value that could not be converted, e.g. "abc" for a bool
	fields.Add("_form", "Some fields could not be read: "+err.Error())
	return fields
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

func formNameFromValidatorError(rootType reflect.Type, fieldError validator.FieldError) string {
	name := fieldError.StructField()
	if rootType == nil {
		return fieldError.Field()
	}

	sf, ok := rootType.FieldByName(name)
	if !ok {
		return fieldError.Field()
	}
	return formNameFromStructField(sf)
}

func formNameFromStructField(sf reflect.StructField) string {
	for _, key := range []string{"form", "json"} {
		tag := sf.Tag.Get(key)
		if tag == "" {
			continue
		}

		name, _, _ := strings.Cut(tag, ",")
		if name != "" && name != "-" {
			return name
		}
	}

	return sf.Name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	case "eqfield":
		if strings.Contains(param, "Password") {
			return "Passwords do not match"
		}
		return "must match " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
