package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"slices"
	"strconv"
	"strings"

	"studentportal/internal/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

// Flash is a one-shot notice shown above the page content.
type Flash struct {
	Kind    string
	Message string
}

// Page is the data every page template receives.
type Page struct {
	View   View
	Email  string
	Flash  *Flash
	Errors map[string]string
	Data   any
}

// Form option lists offered by the biodata and course editors.
var (
	Programs    = []string{"BS Computer Science", "BS Software Engineering", "BS Information Technology", "BS Data Science", "BBA", "B.Com", "BS Mathematics", "BS Physics"}
	Semesters   = []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	BloodGroups = []string{"A+", "A-", "B+", "B-", "O+", "O-", "AB+", "AB-"}
	Genders     = []string{"Male", "Female", "Other"}
	Religions   = []string{"Islam", "Christianity", "Hinduism", "Sikhism", "Other"}
	Domiciles   = []string{"Punjab", "Sindh", "KPK", "Balochistan", "Gilgit-Baltistan", "AJK"}
	CourseTypes = []string{"Core", "Elective", "Lab", "Project", "Thesis"}
)

var funcs = template.FuncMap{
	"nav": func() []View { return Nav },
	"options": func(name string) []string {
		switch name {
		case "programs":
			return Programs
		case "semesters":
			return Semesters
		case "bloodGroups":
			return BloodGroups
		case "genders":
			return Genders
		case "religions":
			return Religions
		case "domiciles":
			return Domiciles
		case "courseTypes":
			return CourseTypes
		case "weekdays":
			return validation.Weekdays
		}
		return nil
	},
	"has": func(list []string, v string) bool { return slices.Contains(list, v) },
	"itoa": func(n int) string {
		if n == 0 {
			return ""
		}
		return strconv.Itoa(n)
	},
	"photoURL": func(s string) template.URL {
		if strings.HasPrefix(s, "data:image/") {
			return template.URL(s)
		}
		return ""
	},
}

var pages = map[string]*template.Template{}

func init() {
	layout := template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html"))
	for _, name := range []string{"login", "biodata", "courses", "confirm", "card"} {
		t := template.Must(layout.Clone())
		pages[name] = template.Must(t.ParseFS(templateFS, "templates/"+name+".html"))
	}
}

// Render writes the named page wrapped in the shared layout.
func Render(w io.Writer, name string, p Page) error {
	t, ok := pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout.html", p)
}
