package validator

import "testing"

type sample struct {
	Email  string `validate:"required,email"`
	Date   string `validate:"required,datetime=2006-01-02"`
	Action string `validate:"required,oneof=approve reject"`
}

func TestValidate_FormatsErrors(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&sample{Email: "nope", Date: "14-03-2025", Action: "maybe"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	msgs := v.FormatValidationErrors(err)
	want := map[string]string{
		"Email":  "Email must be a valid email address",
		"Date":   "Date must match the format 2006-01-02",
		"Action": "Action must be one of: approve reject",
	}
	for field, msg := range want {
		if msgs[field] != msg {
			t.Errorf("%s: got %q, want %q", field, msgs[field], msg)
		}
	}
}

func TestValidate_Passes(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(&sample{Email: "a@b.co", Date: "2025-03-14", Action: "approve"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
