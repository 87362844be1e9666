package github

import (
	"testing"
)

func TestParseProfileViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
		path string
		code string
	}{
		{
			name: "missing id",
			body: `{"login":"a","avatar_url":"https://x.com/a","html_url":"https://x.com/a","type":"User","created_at":"2019-01-02T03:04:05Z","updated_at":"2019-01-02T03:04:05Z"}`,
			path: "id",
			code: "required",
		},
		{
			name: "non-positive id",
			body: `{"login":"a","id":-5,"avatar_url":"https://x.com/a","html_url":"https://x.com/a","type":"User","created_at":"2019-01-02T03:04:05Z","updated_at":"2019-01-02T03:04:05Z"}`,
			path: "id",
			code: "gt",
		},
		{
			name: "malformed avatar url",
			body: `{"login":"a","id":1,"avatar_url":"not a url","html_url":"https://x.com/a","type":"User","created_at":"2019-01-02T03:04:05Z","updated_at":"2019-01-02T03:04:05Z"}`,
			path: "avatar_url",
			code: "url",
		},
		{
			name: "malformed timestamp",
			body: `{"login":"a","id":1,"avatar_url":"https://x.com/a","html_url":"https://x.com/a","type":"User","created_at":"yesterday","updated_at":"2019-01-02T03:04:05Z"}`,
			path: "created_at",
			code: "datetime",
		},
		{
			name: "mistyped id",
			body: `{"login":"a","id":"1234","avatar_url":"https://x.com/a","html_url":"https://x.com/a","type":"User","created_at":"2019-01-02T03:04:05Z","updated_at":"2019-01-02T03:04:05Z"}`,
			path: "id",
			code: "invalid_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProfile([]byte(tt.body))
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if !hasViolation(ve, tt.path, tt.code) {
				t.Errorf("expected violation (%s, %s), got %+v", tt.path, tt.code, ve.Violations)
			}
			if string(ve.Raw) != tt.body {
				t.Errorf("raw body not preserved")
			}
		})
	}
}

func TestParseProfileCollectsAllViolations(t *testing.T) {
	body := `{"login":"","avatar_url":"nope","html_url":"https://x.com/a","type":"User","created_at":"2019-01-02T03:04:05Z","updated_at":"2019-01-02T03:04:05Z"}`
	_, err := ParseProfile([]byte(body))
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	// login required, id required, avatar_url url
	if len(ve.Violations) < 3 {
		t.Errorf("expected at least 3 violations, got %+v", ve.Violations)
	}
}

func TestParseProfileNullableFields(t *testing.T) {
	body := profileJSON(99, "bob")
	p, err := ParseProfile([]byte(body))
	if err != nil {
		t.Fatalf("ParseProfile: %v", err)
	}
	if p.Company != nil || p.Location != nil || p.Email != nil || p.Bio != nil {
		t.Errorf("expected nullable fields to stay nil: %+v", p)
	}
	if p.Name == nil || *p.Name != "Jonghyeon Ko" {
		t.Errorf("expected profile name to be set: %+v", p.Name)
	}
}
