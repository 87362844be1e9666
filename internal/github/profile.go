package github

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Profile is a validated GitHub user profile. Nullable profile attributes are
// pointers; everything else is required by the schema.
type Profile struct {
	Login       string  `json:"login" validate:"required"`
	ID          int64   `json:"id" validate:"required,gt=0"`
	AvatarURL   string  `json:"avatar_url" validate:"required,url"`
	HTMLURL     string  `json:"html_url" validate:"required,url"`
	Type        string  `json:"type" validate:"required"`
	SiteAdmin   bool    `json:"site_admin"`
	Name        *string `json:"name"`
	Company     *string `json:"company"`
	Blog        string  `json:"blog"`
	Location    *string `json:"location"`
	Email       *string `json:"email"`
	Bio         *string `json:"bio"`
	PublicRepos int     `json:"public_repos" validate:"gte=0"`
	Followers   int     `json:"followers" validate:"gte=0"`
	Following   int     `json:"following" validate:"gte=0"`
	CreatedAt   string  `json:"created_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	UpdatedAt   string  `json:"updated_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

var validate = newValidator()

// newValidator builds a validator that reports violations under JSON field
// names, so violation paths match the wire format.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseProfile decodes and validates a raw profile response body. A body that
// is not valid JSON for the schema, or that violates any field constraint,
// yields a *ValidationError carrying one violation per problem plus the raw
// body.
func ParseProfile(body []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &ValidationError{
			Violations: []Violation{{Path: jsonErrorPath(err), Code: "invalid_type", Message: err.Error()}},
			Raw:        json.RawMessage(body),
		}
	}

	if err := validate.Struct(&p); err != nil {
		var fieldErrs validator.ValidationErrors
		errors.As(err, &fieldErrs)
		violations := make([]Violation, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			violations = append(violations, Violation{
				Path:    fe.Field(),
				Code:    fe.Tag(),
				Message: formatViolation(fe),
			})
		}
		if len(violations) == 0 {
			violations = append(violations, Violation{Code: "invalid", Message: err.Error()})
		}
		return nil, &ValidationError{Violations: violations, Raw: json.RawMessage(body)}
	}

	return &p, nil
}

// jsonErrorPath extracts the offending field name from a JSON type error,
// when the decoder can name one.
func jsonErrorPath(err error) string {
	if ute, ok := err.(*json.UnmarshalTypeError); ok {
		return ute.Field
	}
	return ""
}

func formatViolation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "url":
		return "must be a valid URL"
	case "gt", "gte":
		return "must be a positive number"
	case "datetime":
		return "must be an RFC 3339 timestamp"
	default:
		return "invalid value"
	}
}
