package student

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"studentportal/internal/metrics"
	"studentportal/internal/notify"
	"studentportal/internal/store"
	"studentportal/internal/validation"
)

// Biodata is the single student's personal record. Every save replaces the
// whole record.
type Biodata struct {
	FullName         string `json:"fullName" form:"fullName" validate:"required"`
	FatherName       string `json:"fatherName" form:"fatherName" validate:"required"`
	CNIC             string `json:"cnic" form:"cnic" validate:"required,cnic"`
	RollNumber       string `json:"rollNumber" form:"rollNumber" validate:"required"`
	Course           string `json:"course" form:"course" validate:"required"`
	Semester         string `json:"semester" form:"semester" validate:"required"`
	DateOfBirth      string `json:"dateOfBirth" form:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	BloodGroup       string `json:"bloodGroup" form:"bloodGroup" validate:"required"`
	Gender           string `json:"gender" form:"gender" validate:"required"`
	Religion         string `json:"religion" form:"religion" validate:"required"`
	Nationality      string `json:"nationality" form:"nationality" validate:"required"`
	Domicile         string `json:"domicile" form:"domicile" validate:"required"`
	Phone            string `json:"phone" form:"phone" validate:"required,pkphone"`
	Address          string `json:"address" form:"address" validate:"required"`
	Email            string `json:"email" form:"email" validate:"required,email"`
	EmergencyContact string `json:"emergencyContact" form:"emergencyContact" validate:"required"`
	ProfilePhoto     string `json:"profilePhoto" form:"profilePhoto" validate:"omitempty,dataurl"`
}

// PhotoEncoder converts an uploaded image into an inline data URL and
// checks data URLs submitted with a record.
type PhotoEncoder interface {
	Encode(data []byte) (string, error)
	Check(dataURL string) error
}

// SessionReader supplies the logged in email for the default record.
type SessionReader interface {
	Email(ctx context.Context) string
}

// BiodataService loads and saves the biodata record.
type BiodataService struct {
	kv        store.KV
	validator *validation.Validator
	session   SessionReader
	photos    PhotoEncoder
	notifier  notify.Notifier
	logger    *slog.Logger
}

// NewBiodataService creates a service backed by kv.
func NewBiodataService(kv store.KV, v *validation.Validator, session SessionReader, photos PhotoEncoder, n notify.Notifier, logger *slog.Logger) *BiodataService {
	RegisterRules(v)
	v.RegisterRule("dataurl", func(s string) bool { return photos.Check(s) == nil })
	return &BiodataService{kv: kv, validator: v, session: session, photos: photos, notifier: n, logger: logger}
}

// Validate checks rec without saving it.
func (s *BiodataService) Validate(rec Biodata) validation.Result {
	return s.validator.Validate(rec)
}

// Load returns the stored record, or a default one carrying the session
// email when nothing usable is stored. found reports which.
func (s *BiodataService) Load(ctx context.Context) (Biodata, bool, error) {
	stored, err := s.Stored(ctx)
	if err != nil {
		return Biodata{}, false, err
	}
	if stored != nil {
		return *stored, true, nil
	}
	return Biodata{Email: s.session.Email(ctx)}, false, nil
}

// Stored returns the stored record or nil when absent, malformed or empty
// (a stored null decodes to the zero record).
func (s *BiodataService) Stored(ctx context.Context) (*Biodata, error) {
	var rec Biodata
	found, err := store.GetJSON(ctx, s.kv, store.KeyBiodata, &rec)
	if errors.Is(err, store.ErrMalformed) {
		s.logger.Warn("stored biodata unreadable, using default", "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load biodata: %w", err)
	}
	if !found || rec == (Biodata{}) {
		return nil, nil
	}
	return &rec, nil
}

// Save validates rec and overwrites the stored record. A failed validation
// returns *validation.Error and writes nothing.
func (s *BiodataService) Save(ctx context.Context, rec Biodata) (Biodata, error) {
	if err := s.validator.Validate(rec).AsError(); err != nil {
		metrics.RecordWrites.WithLabelValues("biodata", "save", "invalid").Inc()
		s.notifier.Notify(ctx, notify.Error, "Please correct the highlighted fields")
		return Biodata{}, err
	}
	if err := store.SetJSON(ctx, s.kv, store.KeyBiodata, rec); err != nil {
		metrics.RecordWrites.WithLabelValues("biodata", "save", "error").Inc()
		s.notifier.Notify(ctx, notify.Error, err.Error())
		return Biodata{}, fmt.Errorf("save biodata: %w", err)
	}
	metrics.RecordWrites.WithLabelValues("biodata", "save", "ok").Inc()
	s.notifier.Notify(ctx, notify.Success, "Biodata saved successfully")
	return rec, nil
}

// AttachPhoto converts an uploaded image into a profilePhoto value. It does
// not save; the caller submits it with the rest of the form.
func (s *BiodataService) AttachPhoto(ctx context.Context, data []byte) (string, error) {
	url, err := s.photos.Encode(data)
	if err != nil {
		s.notifier.Notify(ctx, notify.Error, "Photo could not be processed")
		return "", fmt.Errorf("encode photo: %w", err)
	}
	return url, nil
}
