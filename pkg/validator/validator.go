package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

func FormatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

// FieldErrors turns binding failures into a field -> message map. The second
// return value is false when err did not come from request binding.
func FieldErrors(err error) (map[string]string, bool) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string]string, len(validationErrors))
		for _, fe := range validationErrors {
			fields[jsonName(fe.Field())] = getFieldErrorMessage(fe)
		}
		return fields, true
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return map[string]string{"body": "request body must be valid JSON"}, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return map[string]string{field: fmt.Sprintf("must be of type %s", typeErr.Type.String())}, true
	}

	return nil, false
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("%s must contain at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Name":            "Name",
		"Email":           "Email",
		"Password":        "Password",
		"CurrentPassword": "Current password",
		"NewPassword":     "New password",
		"Title":           "Title",
		"Description":     "Description",
		"Price":           "Price",
		"Images":          "Images",
		"CategoryID":      "Category",
		"Condition":       "Condition",
		"Location":        "Location",
		"ListingID":       "Listing",
		"ConversationID":  "Conversation",
		"Content":         "Message",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}

// jsonName lowers the first rune so keys line up with the camelCase request payloads.
func jsonName(field string) string {
	if field == "" {
		return field
	}
	if strings.HasSuffix(field, "ID") {
		field = strings.TrimSuffix(field, "ID") + "Id"
	}
	return strings.ToLower(field[:1]) + field[1:]
}
