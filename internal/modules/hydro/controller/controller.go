package controller

import (
	"net/http"

	"github.com/raccog/HydroManager/internal/modules/hydro/repository"
	"github.com/raccog/HydroManager/internal/observability"
)

type HydroController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type hydroControllerImpl struct {
	repository repository.HydroRepository
	metrics    *observability.Metrics
}

// NewHydroController wires the viewer's routes. metrics may be nil.
func NewHydroController(repo repository.HydroRepository, metrics *observability.Metrics) HydroController {
	return &hydroControllerImpl{repository: repo, metrics: metrics}
}

func (c *hydroControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /", c.metrics.WrapHandler("/", http.HandlerFunc(c.handleHome)))
	mux.Handle("GET /status", c.metrics.WrapHandler("/status", http.HandlerFunc(c.handleStatus)))
	mux.Handle("GET /api/v1/readings", c.metrics.WrapHandler("/api/v1/readings", http.HandlerFunc(c.handleReadings)))
	mux.Handle("GET /api/v1/pulses", c.metrics.WrapHandler("/api/v1/pulses", http.HandlerFunc(c.handlePulses)))
}
