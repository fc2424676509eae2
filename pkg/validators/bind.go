// Package validators contains the request guards used by every endpoint that
// takes a body, plus the small standalone validators shared with the admin tools
package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a JSON field path to the reasons it failed validation
type FieldErrors map[string][]string

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Report fields by their JSON names so details line up with the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}

		return name
	})
}

// Bind decodes the JSON body of the request into T and validates it. When
// anything is wrong the request is aborted with a 400 and ok is false, so
// handlers only ever see a fully validated value
func Bind[T any](c *gin.Context) (data *T, ok bool) {
	requestID := c.GetString("requestID")

	var v T
	if err := c.ShouldBindJSON(&v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":     "Request body size exceeds limit",
				"requestID": requestID,
			})
			return nil, false
		}

		details, isField := Describe(err)
		if !isField {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid JSON",
				"requestID": requestID,
			})
			return nil, false
		}

		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Validation failed",
			"details":   details,
			"requestID": requestID,
		})
		return nil, false
	}

	return &v, true
}

// Describe turns a binding error into per-field messages. The second return
// value is false when err isn't tied to any field (syntax errors, empty body)
func Describe(err error) (FieldErrors, bool) {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		out := FieldErrors{}
		for _, fe := range vErrs {
			key := fieldPath(fe.Namespace())
			out[key] = append(out[key], message(fe))
		}

		return out, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return FieldErrors{
			typeErr.Field: {fmt.Sprintf("must be of type %s", jsonKind(typeErr.Type))},
		}, true
	}

	return nil, false
}

// fieldPath strips the root struct name from a validator namespace
func fieldPath(ns string) string {
	if _, rest, found := strings.Cut(ns, "."); found {
		return rest
	}

	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return "must be at most " + fe.Param()
	}

	return "failed the " + fe.Tag() + " check"
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}

	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Ptr:
		return jsonKind(t.Elem())
	}

	return "object"
}
