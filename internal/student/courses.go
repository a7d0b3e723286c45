package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"studentportal/internal/metrics"
	"studentportal/internal/notify"
	"studentportal/internal/store"
	"studentportal/internal/validation"
)

// ErrCourseNotFound is returned when no course carries the requested id.
var ErrCourseNotFound = errors.New("course not found")

// CourseTypes enumerates the accepted courseType values.
var CourseTypes = []string{"Core", "Elective", "Lab", "Project", "Thesis"}

// CourseDraft is the editable part of a course.
type CourseDraft struct {
	CourseCode  string   `json:"courseCode" form:"courseCode" validate:"required"`
	CourseName  string   `json:"courseName" form:"courseName" validate:"required"`
	Instructor  string   `json:"instructor" form:"instructor" validate:"required"`
	CreditHours int      `json:"creditHours" form:"creditHours" validate:"required,min=1,max=6"`
	Timing      string   `json:"timing" form:"timing" validate:"required"`
	Duration    string   `json:"duration" form:"duration" validate:"required"`
	Syllabus    string   `json:"syllabus" form:"syllabus" validate:"required"`
	Room        string   `json:"room" form:"room"`
	Days        []string `json:"days" form:"days" validate:"min=1,unique,dive,weekday"`
	CourseType  string   `json:"courseType" form:"courseType" validate:"omitempty,oneof=Core Elective Lab Project Thesis"`
}

// Course is a stored course. ID is assigned on add and never changes.
type Course struct {
	ID string `json:"id" form:"-"`
	CourseDraft
}

type draftFields CourseDraft

// UnmarshalJSON also reads collections written by the browser client, which
// stored id as a millisecond timestamp and creditHours as the raw form string.
func (c *Course) UnmarshalJSON(data []byte) error {
	aux := struct {
		ID          json.RawMessage `json:"id"`
		CreditHours json.RawMessage `json:"creditHours"`
		*draftFields
	}{draftFields: (*draftFields)(&c.CourseDraft)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	id, err := looseString(aux.ID)
	if err != nil {
		return fmt.Errorf("course id: %w", err)
	}
	hours, err := looseInt(aux.CreditHours)
	if err != nil {
		return fmt.Errorf("course creditHours: %w", err)
	}
	c.ID, c.CreditHours = id, hours
	return nil
}

// looseString accepts a JSON string or number.
func looseString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// looseInt accepts a JSON number or a string holding one; "" reads as 0.
func looseInt(raw json.RawMessage) (int, error) {
	s, err := looseString(raw)
	if err != nil || strings.TrimSpace(s) == "" {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(s))
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, message string) bool { return f(ctx, message) }

// Confirmed is a Confirmer that carries an already given answer.
type Confirmed bool

func (c Confirmed) Confirm(context.Context, string) bool { return bool(c) }

// CourseService manages the ordered course collection. The whole collection
// is rewritten after every change.
type CourseService struct {
	kv        store.KV
	validator *validation.Validator
	notifier  notify.Notifier
	logger    *slog.Logger
	newID     func() string
}

// NewCourseService creates a service backed by kv.
func NewCourseService(kv store.KV, v *validation.Validator, n notify.Notifier, logger *slog.Logger) *CourseService {
	RegisterRules(v)
	return &CourseService{kv: kv, validator: v, notifier: n, logger: logger, newID: uuid.NewString}
}

// Validate checks a draft without saving it.
func (s *CourseService) Validate(d CourseDraft) validation.Result {
	return s.validator.Validate(d)
}

// List returns the courses in insertion order. A malformed collection reads
// as empty.
func (s *CourseService) List(ctx context.Context) ([]Course, error) {
	var courses []Course
	_, err := store.GetJSON(ctx, s.kv, store.KeyCourses, &courses)
	if errors.Is(err, store.ErrMalformed) {
		s.logger.Warn("stored courses unreadable, using empty list", "error", err)
		return []Course{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	if courses == nil {
		courses = []Course{}
	}
	return courses, nil
}

// Get returns one course.
func (s *CourseService) Get(ctx context.Context, id string) (Course, error) {
	courses, err := s.List(ctx)
	if err != nil {
		return Course{}, err
	}
	if i := indexOf(courses, id); i >= 0 {
		return courses[i], nil
	}
	return Course{}, ErrCourseNotFound
}

// Add validates d, appends it with a fresh id and persists the collection.
func (s *CourseService) Add(ctx context.Context, d CourseDraft) (Course, error) {
	if err := s.validate(ctx, "add", d); err != nil {
		return Course{}, err
	}
	courses, err := s.List(ctx)
	if err != nil {
		return Course{}, err
	}

	c := Course{ID: s.newID(), CourseDraft: d}
	for indexOf(courses, c.ID) >= 0 {
		c.ID = s.newID()
	}
	courses = append(courses, c)
	if err := s.persist(ctx, "add", courses); err != nil {
		return Course{}, err
	}
	s.notifier.Notify(ctx, notify.Success, "Course added successfully")
	return c, nil
}

// Update replaces the course with id in place, keeping its id and position.
func (s *CourseService) Update(ctx context.Context, id string, d CourseDraft) (Course, error) {
	if err := s.validate(ctx, "update", d); err != nil {
		return Course{}, err
	}
	courses, err := s.List(ctx)
	if err != nil {
		return Course{}, err
	}
	i := indexOf(courses, id)
	if i < 0 {
		metrics.RecordWrites.WithLabelValues("course", "update", "not_found").Inc()
		return Course{}, ErrCourseNotFound
	}

	courses[i] = Course{ID: id, CourseDraft: d}
	if err := s.persist(ctx, "update", courses); err != nil {
		return Course{}, err
	}
	s.notifier.Notify(ctx, notify.Success, "Course updated successfully")
	return courses[i], nil
}

// Remove deletes the course with id once confirm approves. A missing id
// returns ErrCourseNotFound without asking; a declined confirmation returns
// false and leaves the collection untouched.
func (s *CourseService) Remove(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	courses, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(courses, id)
	if i < 0 {
		metrics.RecordWrites.WithLabelValues("course", "remove", "not_found").Inc()
		return false, ErrCourseNotFound
	}
	if confirm == nil || !confirm.Confirm(ctx, fmt.Sprintf("Delete course %s? You won't be able to revert this!", courses[i].CourseCode)) {
		metrics.RecordWrites.WithLabelValues("course", "remove", "declined").Inc()
		return false, nil
	}

	remaining := make([]Course, 0, len(courses)-1)
	remaining = append(remaining, courses[:i]...)
	remaining = append(remaining, courses[i+1:]...)
	if err := s.persist(ctx, "remove", remaining); err != nil {
		return false, err
	}
	s.notifier.Notify(ctx, notify.Success, "Course has been deleted")
	return true, nil
}

func (s *CourseService) validate(ctx context.Context, op string, d CourseDraft) error {
	if err := s.validator.Validate(d).AsError(); err != nil {
		metrics.RecordWrites.WithLabelValues("course", op, "invalid").Inc()
		s.notifier.Notify(ctx, notify.Error, "Please correct the highlighted fields")
		return err
	}
	return nil
}

func (s *CourseService) persist(ctx context.Context, op string, courses []Course) error {
	if err := store.SetJSON(ctx, s.kv, store.KeyCourses, courses); err != nil {
		metrics.RecordWrites.WithLabelValues("course", op, "error").Inc()
		s.notifier.Notify(ctx, notify.Error, err.Error())
		return fmt.Errorf("save courses: %w", err)
	}
	metrics.RecordWrites.WithLabelValues("course", op, "ok").Inc()
	return nil
}

func indexOf(courses []Course, id string) int {
	for i, c := range courses {
		if c.ID == id {
			return i
		}
	}
	return -1
}
