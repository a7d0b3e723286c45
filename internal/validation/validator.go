package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	cnicPattern  = regexp.MustCompile(`^\d{5}-\d{7}-\d$`)
	phonePattern = regexp.MustCompile(`^03\d{9}$`)
)

// Weekdays are the accepted values for a course's days.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Result is the outcome of validating one record. Errors maps the JSON field
// name to a single human readable message.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Error carries a failed Result through error returns.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 1 {
		for f, msg := range e.Fields {
			return fmt.Sprintf("validation failed: %s: %s", f, msg)
		}
	}
	return fmt.Sprintf("validation failed: %d field errors", len(e.Fields))
}

// FieldNames lists the failing field names in sorted order.
func (e *Error) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// AsError returns nil for a valid result and *Error otherwise.
func (r Result) AsError() error {
	if r.Valid {
		return nil
	}
	return &Error{Fields: r.Errors}
}

// Messages maps field -> rule tag -> message. A missing entry falls back to a
// generic message built from the label.
type Messages map[string]map[string]string

// Validator checks records against their struct-tag schema.
type Validator struct {
	validate *validator.Validate
	messages Messages
	labels   map[string]string
	rules    map[string]func(string) bool
}

// New creates a validator with the portal's custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("cnic", func(fl validator.FieldLevel) bool {
		return cnicPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pkphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		day := fl.Field().String()
		for _, w := range Weekdays {
			if w == day {
				return true
			}
		}
		return false
	})

	return &Validator{
		validate: v,
		messages: Messages{},
		labels:   map[string]string{},
		rules:    map[string]func(string) bool{},
	}
}

// RegisterRule adds a string rule under tag. Registering the same tag again
// replaces the check, including for structs validated before. Call it before
// validating any struct that uses tag.
func (v *Validator) RegisterRule(tag string, check func(value string) bool) {
	_, known := v.rules[tag]
	v.rules[tag] = check
	if known {
		return
	}
	_ = v.validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return v.rules[tag](fl.Field().String())
	})
}

// Register adds labels and per-rule messages for a record's fields.
func (v *Validator) Register(labels map[string]string, messages Messages) {
	for f, l := range labels {
		v.labels[f] = l
	}
	for f, rules := range messages {
		if v.messages[f] == nil {
			v.messages[f] = map[string]string{}
		}
		for tag, msg := range rules {
			v.messages[f][tag] = msg
		}
	}
}

// Validate checks every field of record and reports the first failing rule
// of each field. record must be a struct or a pointer to one.
func (v *Validator) Validate(record any) Result {
	err := v.validate.Struct(record)
	if err == nil {
		return Result{Valid: true}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Result{Valid: false, Errors: map[string]string{"_": err.Error()}}
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := topField(fe)
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = v.message(field, fe)
	}
	return Result{Valid: false, Errors: out}
}

// topField reduces "Course.days[2]" to "days".
func topField(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if i := strings.IndexAny(ns, ".["); i >= 0 {
		ns = ns[:i]
	}
	return ns
}

func (v *Validator) message(field string, fe validator.FieldError) string {
	if rules, ok := v.messages[field]; ok {
		if msg, ok := rules[fe.Tag()]; ok {
			return msg
		}
	}
	label := v.labels[field]
	if label == "" {
		label = field
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Invalid email"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Select at least %s %s", fe.Param(), strings.ToLower(label))
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return label + " must be a valid date"
	default:
		return label + " is invalid"
	}
}
