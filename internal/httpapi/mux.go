package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/raccog/HydroManager/internal/observability"
)

func NewMux(db *sql.DB, staticDir string, metrics *observability.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	return mux
}
