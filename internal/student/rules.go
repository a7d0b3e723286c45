package student

import "studentportal/internal/validation"

var labels = map[string]string{
	"fullName":         "Full Name",
	"fatherName":       "Father's Name",
	"cnic":             "CNIC",
	"rollNumber":       "Roll Number",
	"course":           "Course",
	"semester":         "Semester",
	"dateOfBirth":      "Date of Birth",
	"bloodGroup":       "Blood Group",
	"gender":           "Gender",
	"religion":         "Religion",
	"nationality":      "Nationality",
	"domicile":         "Domicile",
	"phone":            "Phone",
	"address":          "Address",
	"email":            "Email",
	"emergencyContact": "Emergency Contact",
	"profilePhoto":     "Profile Photo",

	"courseCode":  "Course Code",
	"courseName":  "Course Name",
	"instructor":  "Instructor",
	"creditHours": "Credit Hours",
	"timing":      "Timing",
	"duration":    "Duration",
	"syllabus":    "Syllabus",
	"days":        "Days",
	"courseType":  "Course Type",
}

var messages = validation.Messages{
	"cnic":         {"cnic": "CNIC must be in format: 12345-1234567-1"},
	"phone":        {"pkphone": "Phone must start with 03 and be 11 digits"},
	"email":        {"email": "Invalid email"},
	"profilePhoto": {"dataurl": "Profile Photo must be a JPEG, PNG, GIF or WebP image within the size limit"},
	"creditHours":  {"min": "Credit Hours must be between 1 and 6", "max": "Credit Hours must be between 1 and 6"},
	"days":         {"min": "Select at least one day", "unique": "Each day can be selected once", "weekday": "Days must be weekday names"},
}

// RegisterRules installs the biodata and course field labels and messages.
func RegisterRules(v *validation.Validator) {
	v.Register(labels, messages)
}
