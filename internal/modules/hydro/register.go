package hydro

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/raccog/HydroManager/internal/modules/hydro/controller"
	"github.com/raccog/HydroManager/internal/modules/hydro/repository"
	"github.com/raccog/HydroManager/internal/observability"
)

// RegisterFeature wires the hydro module's routes and metrics onto the
// viewer's mux. metrics may be nil.
func RegisterFeature(mux *http.ServeMux, db *sql.DB, metrics *observability.Metrics) {
	hydroRepository := repository.NewRepository(db)
	hydroController := controller.NewHydroController(hydroRepository, metrics)
	hydroController.RegisterRoutes(mux)

	metrics.RegisterRowCounts(
		rowCountFunc(hydroRepository.CountReadings, "sensor_readings"),
		rowCountFunc(hydroRepository.CountPulses, "pump_pulses"),
	)
}

func rowCountFunc(count func(context.Context) (int, error), table string) func() float64 {
	return func() float64 {
		n, err := count(context.Background())
		if err != nil {
			slog.Error("row count scrape failed", "table", table, "error", err)
			return -1
		}
		return float64(n)
	}
}
