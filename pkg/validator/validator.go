package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ghuser/inventory/pkg/httpx"
)

// MsgInvalidBody is the top-level message of every 400 carrying issues.
const MsgInvalidBody = "Invalid body"

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]

		// ignore unexported or explicitly ignored
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Validate runs struct-level validation using go-playground/validator tags.
func Validate(s any) error {
	return validate.Struct(s)
}

// Issues converts validator.ValidationErrors into field-level issues in
// struct field order. Paths use json tag names and omit the root struct.
func Issues(err error) []httpx.Issue {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	issues := make([]httpx.Issue, 0, len(ve))
	for _, e := range ve {
		issues = append(issues, httpx.Issue{
			Path:    fieldPath(e.Namespace()),
			Message: formatFieldError(e),
		})
	}
	return issues
}

func fieldPath(namespace string) []string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return parts
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "uuid", "uuid4":
		return "Must be a valid UUID"
	case "min":
		return fmt.Sprintf("Minimum length is %s", e.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", e.Param())
	case "email":
		return "Must be a valid email address"
	case "numeric":
		return "Must be a numeric value"
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", e.Param())
	default:
		return fmt.Sprintf("Validation failed on '%s'", e.Tag())
	}
}

// DecodeJSON decodes exactly one JSON value from r into dst. Malformed input
// and JSON values of the wrong type are reported as issues rather than errors
// so callers can answer with a 400 directly.
func DecodeJSON(r io.Reader, dst any) []httpx.Issue {
	dec := json.NewDecoder(r)
	if err := dec.Decode(dst); err != nil {
		return decodeIssues(err)
	}
	if dec.More() {
		return []httpx.Issue{{Path: []string{}, Message: "Unexpected data after JSON body"}}
	}
	return nil
}

func decodeIssues(err error) []httpx.Issue {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		path := []string{}
		if typeErr.Field != "" {
			path = strings.Split(typeErr.Field, ".")
		}
		return []httpx.Issue{{
			Path:    path,
			Message: fmt.Sprintf("Expected %s, received %s", jsonKind(typeErr.Type), typeErr.Value),
		}}
	case errors.Is(err, io.EOF):
		return []httpx.Issue{{Path: []string{}, Message: "Request body is required"}}
	default:
		return []httpx.Issue{{Path: []string{}, Message: "Malformed JSON"}}
	}
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
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
		return "array"
	default:
		return "object"
	}
}

// ValidateRequest decodes the JSON request body into T, validates it, and
// writes a 400 {"message":"Invalid body","issues":[...]} if either step fails.
// Returns (parsedStruct, true) on success or (nil, false) on failure.
func ValidateRequest[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	if issues := DecodeJSON(r.Body, &req); issues != nil {
		httpx.JSONIssues(w, http.StatusBadRequest, MsgInvalidBody, issues)
		return nil, false
	}
	if err := Validate(&req); err != nil {
		httpx.JSONIssues(w, http.StatusBadRequest, MsgInvalidBody, Issues(err))
		return nil, false
	}
	return &req, true
}
