package views

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadTemplates_success(t *testing.T) {
	err := LoadTemplates()
	if err != nil {
		t.Fatalf("LoadTemplates() = %v; want nil", err)
	}
	if pagesTmpl == nil {
		t.Fatal("LoadTemplates() left pagesTmpl nil")
	}
}

func TestLoadTemplates_failure_sub(t *testing.T) {
	// Empty FS has no "templates" directory; fs.Sub fails.
	emptyFS := fstest.MapFS{}
	err := loadTemplatesFromFS(emptyFS, "templates")
	if err == nil {
		t.Fatal("loadTemplatesFromFS(emptyFS, \"templates\") = nil; want error")
	}
}

func TestLoadTemplates_failure_parse(t *testing.T) {
	// FS with invalid template syntax; ParseFS fails.
	badFS := fstest.MapFS{
		"templates/base.html": {Data: []byte("{{ .")},
	}
	err := loadTemplatesFromFS(badFS, "templates")
	if err == nil {
		t.Fatal("loadTemplatesFromFS(badFS, \"templates\") = nil; want error")
	}
}

func TestRenderHome_notLoaded(t *testing.T) {
	prev := pagesTmpl
	pagesTmpl = nil
	t.Cleanup(func() { pagesTmpl = prev })

	var buf bytes.Buffer
	err := RenderHome(&buf, HomeData{Title: "Hydro"})
	if err == nil {
		t.Fatal("RenderHome() = nil; want error when templates not loaded")
	}
	if !strings.Contains(err.Error(), "not loaded") {
		t.Errorf("err = %q; want message containing \"not loaded\"", err.Error())
	}
}

func TestRenderHome(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}

	var buf bytes.Buffer
	if err := RenderHome(&buf, HomeData{Title: "Hydro"}); err != nil {
		t.Fatalf("RenderHome() = %v; want nil", err)
	}
	out := buf.String()
	if !strings.Contains(out, "HydroManager") {
		t.Errorf("output missing \"HydroManager\"; got %q", out)
	}
	if !strings.Contains(out, `href="/status"`) {
		t.Errorf("output missing link to /status; got %q", out)
	}
}

func TestRenderStatus(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}

	data := StatusData{
		Title: "Status",
		PH:    []ChartPoint{{1000000, 6.5}},
		Down:  []ChartPoint{{500000, 2.5}},
		Up:    []ChartPoint{},
	}
	var buf bytes.Buffer
	if err := RenderStatus(&buf, data); err != nil {
		t.Fatalf("RenderStatus() = %v; want nil", err)
	}
	out := buf.String()
	if !strings.Contains(out, "pH Over Time") {
		t.Errorf("output missing chart title; got %q", out)
	}
	if !strings.Contains(out, "[1000000,6.5]") {
		t.Errorf("output missing pH series data; got %q", out)
	}
	if !strings.Contains(out, "[500000,2.5]") {
		t.Errorf("output missing down-pulse series data; got %q", out)
	}
}

func TestRenderStatus_emptySeries(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}

	data := StatusData{
		Title: "Status",
		PH:    []ChartPoint{},
		Down:  []ChartPoint{},
		Up:    []ChartPoint{},
	}
	var buf bytes.Buffer
	if err := RenderStatus(&buf, data); err != nil {
		t.Fatalf("RenderStatus(empty) = %v; want nil", err)
	}
	if !strings.Contains(buf.String(), "data: []") {
		t.Errorf("empty series should render as []; got %q", buf.String())
	}
}
