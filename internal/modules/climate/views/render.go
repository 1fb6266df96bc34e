package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
)

var indexTmpl *template.Template

// loadTemplatesFromFS parses every page in dir. Tests pass a fake fs to
// exercise the failure paths.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	indexTmpl = tmpl
	return nil
}

// LoadTemplates parses the embedded pages. It must succeed before the
// server starts.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// IndexData is the view model of the landing page.
type IndexData struct {
	Title      string
	Routes     []string
	DateRoutes []string
}

// DefaultIndex lists the API routes served under /api/v1.0.
func DefaultIndex() *IndexData {
	return &IndexData{
		Title: "Hawaii Climate API",
		Routes: []string{
			"/api/v1.0/precipitation",
			"/api/v1.0/stations",
			"/api/v1.0/tobs",
		},
		DateRoutes: []string{
			"/api/v1.0/(start)",
			"/api/v1.0/(start)/(end)",
		},
	}
}

func RenderIndex(w io.Writer, data *IndexData) error {
	if indexTmpl == nil {
		return errors.New("index template not loaded: call views.LoadTemplates during startup")
	}
	return indexTmpl.ExecuteTemplate(w, "index.html", data)
}
