package views

import "strings"

// View is one navigable page of the portal.
type View struct {
	Name      string
	Path      string
	Title     string
	Protected bool
}

var (
	Login       = View{Name: "login", Path: "/login", Title: "Student Portal"}
	Biodata     = View{Name: "biodata", Path: "/", Title: "Biodata Form", Protected: true}
	Courses     = View{Name: "courses", Path: "/courses", Title: "Courses", Protected: true}
	StudentCard = View{Name: "card", Path: "/student-card", Title: "Student Card", Protected: true}
)

// All is the route table in navigation order.
var All = []View{Login, Biodata, Courses, StudentCard}

// Nav lists the views shown in the navigation bar.
var Nav = []View{Biodata, Courses, StudentCard}

// Resolve maps a request path to a view. redirect is non-empty when the
// caller must be sent elsewhere: unknown paths and protected views without
// a session both go to the login view.
func Resolve(path string, authed bool) (v View, redirect string) {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	for _, v := range All {
		if v.Path != path {
			continue
		}
		if v.Protected && !authed {
			return View{}, Login.Path
		}
		return v, ""
	}
	return View{}, Login.Path
}
