package validation

import (
	"errors"
	"testing"
)

type sample struct {
	Name  string   `json:"name" validate:"required"`
	CNIC  string   `json:"cnic" validate:"required,cnic"`
	Phone string   `json:"phone" validate:"required,pkphone"`
	Mail  string   `json:"email" validate:"required,email"`
	Hours int      `json:"hours" validate:"required,min=1,max=6"`
	Days  []string `json:"days" validate:"min=1,dive,weekday"`
	Note  string   `json:"note"`
}

func newSampleValidator() *Validator {
	v := New()
	v.Register(
		map[string]string{"name": "Name", "hours": "Credit Hours", "days": "Days"},
		Messages{
			"cnic":  {"cnic": "CNIC must be in format: 12345-1234567-1"},
			"phone": {"pkphone": "Phone must start with 03 and be 11 digits"},
		},
	)
	return v
}

func validSample() sample {
	return sample{
		Name:  "Ayesha",
		CNIC:  "12345-1234567-1",
		Phone: "03001234567",
		Mail:  "ayesha@example.com",
		Hours: 3,
		Days:  []string{"Monday"},
	}
}

func TestValidateAcceptsValidRecord(t *testing.T) {
	res := newSampleValidator().Validate(validSample())
	if !res.Valid || len(res.Errors) != 0 {
		t.Fatalf("Validate() = %+v, want valid", res)
	}
	if res.AsError() != nil {
		t.Error("AsError() should be nil for a valid result")
	}
}

func TestValidateFieldMessages(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*sample)
		field   string
		message string
	}{
		{"missing name", func(s *sample) { s.Name = "" }, "name", "Name is required"},
		{"bad cnic", func(s *sample) { s.CNIC = "123-456-7" }, "cnic", "CNIC must be in format: 12345-1234567-1"},
		{"empty cnic", func(s *sample) { s.CNIC = "" }, "cnic", "cnic is required"},
		{"phone without leading zero", func(s *sample) { s.Phone = "3001234567" }, "phone", "Phone must start with 03 and be 11 digits"},
		{"phone too long", func(s *sample) { s.Phone = "030012345678" }, "phone", "Phone must start with 03 and be 11 digits"},
		{"bad email", func(s *sample) { s.Mail = "not-an-email" }, "email", "Invalid email"},
		{"hours too high", func(s *sample) { s.Hours = 7 }, "hours", "Credit Hours must be at most 6"},
		{"hours zero", func(s *sample) { s.Hours = 0 }, "hours", "Credit Hours is required"},
		{"no days", func(s *sample) { s.Days = nil }, "days", "Select at least 1 days"},
		{"bad day", func(s *sample) { s.Days = []string{"Monday", "Funday"} }, "days", "Days is invalid"},
	}

	v := newSampleValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSample()
			tt.mutate(&s)
			res := v.Validate(s)
			if res.Valid {
				t.Fatal("Validate() reported valid")
			}
			if len(res.Errors) != 1 {
				t.Fatalf("Validate() errors = %v, want exactly %q", res.Errors, tt.field)
			}
			if got := res.Errors[tt.field]; got != tt.message {
				t.Errorf("message for %s = %q, want %q", tt.field, got, tt.message)
			}
		})
	}
}

func TestValidateReportsAllFields(t *testing.T) {
	res := newSampleValidator().Validate(sample{})
	for _, f := range []string{"name", "cnic", "phone", "email", "hours", "days"} {
		if _, ok := res.Errors[f]; !ok {
			t.Errorf("missing error for %s in %v", f, res.Errors)
		}
	}
	if _, ok := res.Errors["note"]; ok {
		t.Error("optional field reported")
	}

	err := res.AsError()
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("AsError() = %T, want *Error", err)
	}
	if names := verr.FieldNames(); len(names) != 6 || names[0] != "cnic" {
		t.Errorf("FieldNames() = %v", names)
	}
}

func TestValidateNonStruct(t *testing.T) {
	res := New().Validate(42)
	if res.Valid {
		t.Error("non-struct input reported valid")
	}
}

type photoRecord struct {
	Photo string   `json:"photo" validate:"omitempty,shortphoto"`
	Days  []string `json:"days" validate:"min=1,unique,dive,weekday"`
}

func TestRegisterRule(t *testing.T) {
	v := New()
	v.RegisterRule("shortphoto", func(s string) bool { return len(s) <= 3 })
	v.Register(map[string]string{"photo": "Photo"}, Messages{"days": {"unique": "Days must not repeat"}})

	if res := v.Validate(photoRecord{Photo: "abc", Days: []string{"Monday"}}); !res.Valid {
		t.Fatalf("Validate() = %v", res.Errors)
	}
	if res := v.Validate(photoRecord{Photo: "abcd", Days: []string{"Monday"}}); res.Errors["photo"] != "Photo is invalid" {
		t.Errorf("photo error = %q", res.Errors["photo"])
	}

	v.RegisterRule("shortphoto", func(s string) bool { return len(s) <= 5 })
	if res := v.Validate(photoRecord{Photo: "abcd", Days: []string{"Monday"}}); !res.Valid {
		t.Errorf("replaced rule not applied: %v", res.Errors)
	}

	res := v.Validate(photoRecord{Days: []string{"Monday", "Monday"}})
	if res.Errors["days"] != "Days must not repeat" {
		t.Errorf("duplicate days error = %q", res.Errors["days"])
	}
}
