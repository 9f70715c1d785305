package views

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"io/fs"
)

var pagesTmpl *template.Template

// loadTemplatesFromFS loads page templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	funcs := template.FuncMap{
		"toJSON": func(v any) (template.JS, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return template.JS(b), nil
		},
	}
	pagesTmpl, err = template.New("pages").Funcs(funcs).ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads the embedded page templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// ChartPoint is one [x, y] pair for the chart: display milliseconds, value.
type ChartPoint [2]float64

// HomeData is the view model for the placeholder landing page.
type HomeData struct {
	Title string
}

// StatusData is the view model for the chart page. Down and Up carry pulse
// lengths for the two dosing pumps; PH carries sensor values.
type StatusData struct {
	Title string
	PH    []ChartPoint
	Down  []ChartPoint
	Up    []ChartPoint
}

func RenderHome(w io.Writer, data HomeData) error {
	if pagesTmpl == nil {
		return errors.New("page templates not loaded: call views.LoadTemplates during startup")
	}
	return pagesTmpl.ExecuteTemplate(w, "home.html", data)
}

func RenderStatus(w io.Writer, data StatusData) error {
	if pagesTmpl == nil {
		return errors.New("page templates not loaded: call views.LoadTemplates during startup")
	}
	return pagesTmpl.ExecuteTemplate(w, "status.html", data)
}
