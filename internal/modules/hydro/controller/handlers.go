package controller

import (
	"log/slog"
	"net/http"

	"github.com/raccog/HydroManager/internal/deviceclock"
	"github.com/raccog/HydroManager/internal/modules/hydro/types"
	"github.com/raccog/HydroManager/internal/modules/hydro/views"
	"github.com/raccog/HydroManager/internal/utils"
)

func (c *hydroControllerImpl) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.RenderHome(w, views.HomeData{Title: "Home"}); err != nil {
		slog.Error("home template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
}

func (c *hydroControllerImpl) handleStatus(w http.ResponseWriter, r *http.Request) {
	readings, err := c.repository.ListReadings(r.Context())
	if err != nil {
		slog.Error("status: list readings failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}
	pulses, err := c.repository.ListPulses(r.Context())
	if err != nil {
		slog.Error("status: list pulses failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load pulses")
		return
	}

	data := buildStatusData(readings, pulses)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.RenderStatus(w, data); err != nil {
		slog.Error("status template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	c.metrics.StatusRender()
}

// buildStatusData converts stored rows into chart series. Stored timestamps
// go back through the device clock correction so the chart plots the
// device's own time axis.
func buildStatusData(readings []types.SensorReading, pulses []types.PumpPulse) views.StatusData {
	data := views.StatusData{
		Title: "Status",
		PH:    make([]views.ChartPoint, 0, len(readings)),
		Down:  make([]views.ChartPoint, 0),
		Up:    make([]views.ChartPoint, 0),
	}
	for _, rec := range readings {
		x := float64(deviceclock.DisplayMillis(rec.Time))
		data.PH = append(data.PH, views.ChartPoint{x, rec.Value})
	}
	for _, p := range pulses {
		x := float64(deviceclock.DisplayMillis(p.Time))
		switch p.PumpID {
		case types.PumpPHDown:
			data.Down = append(data.Down, views.ChartPoint{x, p.Length})
		case types.PumpPHUp:
			data.Up = append(data.Up, views.ChartPoint{x, p.Length})
		default:
			// Unknown pumps stay off the chart but remain visible over the API.
			slog.Warn("status: pulse for unknown pump excluded from chart", "pump_id", p.PumpID)
		}
	}
	return data
}

func (c *hydroControllerImpl) handleReadings(w http.ResponseWriter, r *http.Request) {
	readings, err := c.repository.ListReadings(r.Context())
	if err != nil {
		slog.Error("api: list readings failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}
	if readings == nil {
		readings = []types.SensorReading{}
	}
	utils.WriteJSON(w, http.StatusOK, readings)
}

func (c *hydroControllerImpl) handlePulses(w http.ResponseWriter, r *http.Request) {
	pulses, err := c.repository.ListPulses(r.Context())
	if err != nil {
		slog.Error("api: list pulses failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load pulses")
		return
	}
	if pulses == nil {
		pulses = []types.PumpPulse{}
	}
	utils.WriteJSON(w, http.StatusOK, pulses)
}
