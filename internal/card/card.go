package card

import (
	"fmt"
	"time"

	"studentportal/internal/student"
)

// Title names the printable document and the PDF download.
const Title = "Student_ID_Card"

const (
	defaultInstitution = "University of Technology"
	defaultCourseLimit = 3
)

// Front is the identity side of the card.
type Front struct {
	Photo      string `json:"photo,omitempty"`
	FullName   string `json:"fullName"`
	FatherName string `json:"fatherName"`
	RollNumber string `json:"rollNumber"`
	CNIC       string `json:"cnic"`
	Course     string `json:"course"`
	Semester   string `json:"semester"`
	BloodGroup string `json:"bloodGroup"`
	Gender     string `json:"gender"`
}

// Back carries contact and personal details.
type Back struct {
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergencyContact"`
	DateOfBirth      string `json:"dateOfBirth"`
	Religion         string `json:"religion"`
	Nationality      string `json:"nationality"`
	Domicile         string `json:"domicile"`
}

// CourseSummary is the short form of a course shown on the back.
type CourseSummary struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Card is the composed view of the stored records. When Empty is set only
// Title and Institution are filled.
type Card struct {
	Empty        bool            `json:"empty"`
	Title        string          `json:"title"`
	Institution  string          `json:"institution"`
	ValidThrough string          `json:"validThrough,omitempty"`
	Front        *Front          `json:"front,omitempty"`
	Back         *Back           `json:"back,omitempty"`
	Courses      []CourseSummary `json:"courses,omitempty"`
	Token        string          `json:"token,omitempty"`
	Footer       string          `json:"footer,omitempty"`
}

type options struct {
	institution string
	courseLimit int
}

// Option adjusts Compose.
type Option func(*options)

// WithInstitution overrides the institution printed on the card.
func WithInstitution(name string) Option {
	return func(o *options) {
		if name != "" {
			o.institution = name
		}
	}
}

// WithCourseLimit sets how many courses the back face lists.
func WithCourseLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.courseLimit = n
		}
	}
}

// Compose builds the card from the stored biodata and courses. bio is nil
// when no biodata has been saved yet.
func Compose(bio *student.Biodata, courses []student.Course, now time.Time, opts ...Option) Card {
	o := options{institution: defaultInstitution, courseLimit: defaultCourseLimit}
	for _, opt := range opts {
		opt(&o)
	}

	c := Card{Title: Title, Institution: o.institution}
	if bio == nil {
		c.Empty = true
		return c
	}

	c.ValidThrough = fmt.Sprintf("December %d", now.Year())
	c.Front = &Front{
		Photo:      bio.ProfilePhoto,
		FullName:   bio.FullName,
		FatherName: bio.FatherName,
		RollNumber: bio.RollNumber,
		CNIC:       bio.CNIC,
		Course:     bio.Course,
		Semester:   bio.Semester,
		BloodGroup: bio.BloodGroup,
		Gender:     bio.Gender,
	}
	c.Back = &Back{
		Phone:            bio.Phone,
		Email:            bio.Email,
		Address:          bio.Address,
		EmergencyContact: bio.EmergencyContact,
		DateOfBirth:      formatDate(bio.DateOfBirth),
		Religion:         bio.Religion,
		Nationality:      bio.Nationality,
		Domicile:         bio.Domicile,
	}
	for i, course := range courses {
		if i == o.courseLimit {
			break
		}
		c.Courses = append(c.Courses, CourseSummary{Code: course.CourseCode, Name: course.CourseName})
	}
	c.Token = VerificationToken(bio.RollNumber, now.Year())
	c.Footer = fmt.Sprintf("This card is the property of %s. If found, please return to the university administration. Misuse of this card is punishable by law.", o.institution)
	return c
}

// VerificationToken returns the printed verification code for a roll number.
func VerificationToken(roll string, year int) string {
	return fmt.Sprintf("STU-%s-%d", roll, year)
}

func formatDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02 Jan 2006")
}
