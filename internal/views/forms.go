package views

import (
	"html/template"

	"studentportal/internal/student"
)

// Field is one input of the biodata editor.
type Field struct {
	Name        string
	Label       string
	Type        string
	Placeholder string
	Options     []string
	Required    bool
	Value       string
	Error       string
}

// BiodataForm is the data of the biodata page.
type BiodataForm struct {
	Record student.Biodata
	Fields []Field
}

// CoursesPage is the data of the course page. EditID is set while a course
// is being edited.
type CoursesPage struct {
	Courses []student.Course
	Draft   student.CourseDraft
	EditID  string
}

// CardPage is the data of the card page.
type CardPage struct {
	Empty bool
	HTML  template.HTML
}

// NewBiodataForm lays out rec as editor fields, attaching errs by name.
func NewBiodataForm(rec student.Biodata, errs map[string]string) BiodataForm {
	fields := []Field{
		{Name: "fullName", Label: "Full Name", Type: "text", Placeholder: "Enter your full name", Value: rec.FullName},
		{Name: "fatherName", Label: "Father's Name", Type: "text", Placeholder: "Enter father's name", Value: rec.FatherName},
		{Name: "cnic", Label: "CNIC", Type: "text", Placeholder: "12345-1234567-1", Value: rec.CNIC},
		{Name: "rollNumber", Label: "Roll Number", Type: "text", Placeholder: "Enter roll number", Value: rec.RollNumber},
		{Name: "course", Label: "Course", Options: Programs, Value: rec.Course},
		{Name: "semester", Label: "Semester", Options: Semesters, Value: rec.Semester},
		{Name: "dateOfBirth", Label: "Date of Birth", Type: "date", Value: rec.DateOfBirth},
		{Name: "bloodGroup", Label: "Blood Group", Options: BloodGroups, Value: rec.BloodGroup},
		{Name: "gender", Label: "Gender", Options: Genders, Value: rec.Gender},
		{Name: "religion", Label: "Religion", Options: Religions, Value: rec.Religion},
		{Name: "nationality", Label: "Nationality", Type: "text", Placeholder: "e.g., Pakistani", Value: rec.Nationality},
		{Name: "domicile", Label: "Domicile", Options: Domiciles, Value: rec.Domicile},
		{Name: "phone", Label: "Phone Number", Type: "tel", Placeholder: "03001234567", Value: rec.Phone},
		{Name: "address", Label: "Address", Type: "textarea", Placeholder: "House #, Street, City, Country", Value: rec.Address},
		{Name: "email", Label: "Email", Type: "email", Value: rec.Email},
		{Name: "emergencyContact", Label: "Emergency Contact", Type: "text", Placeholder: "Name and phone number", Value: rec.EmergencyContact},
	}
	for i := range fields {
		fields[i].Required = true
		fields[i].Error = errs[fields[i].Name]
	}
	return BiodataForm{Record: rec, Fields: fields}
}
