package card

import (
	"embed"
	"html/template"
	"io"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("cards").Funcs(template.FuncMap{
	"photoURL": photoURL,
}).ParseFS(templateFS, "templates/*.html"))

// photoURL lets inline image data URLs through the template's URL filter.
// Anything else is dropped.
func photoURL(s string) template.URL {
	if strings.HasPrefix(s, "data:image/") {
		return template.URL(s)
	}
	return ""
}

// RenderHTML writes a standalone printable document with the front and
// back faces on separate pages.
func RenderHTML(w io.Writer, c Card) error {
	return templates.ExecuteTemplate(w, "print.html", c)
}

// RenderFragment writes only the card markup for embedding in a page.
func RenderFragment(w io.Writer, c Card) error {
	return templates.ExecuteTemplate(w, "card", c)
}

// Fragment returns the card markup as trusted HTML.
func Fragment(c Card) (template.HTML, error) {
	var b strings.Builder
	if err := RenderFragment(&b, c); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}
