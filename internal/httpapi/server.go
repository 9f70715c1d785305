package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"

	"github.com/raccog/HydroManager/internal/config"
)

// NewServer wraps the mux in access logging and panic recovery so a handler
// crash surfaces as a 500 instead of killing the process.
func NewServer(cfg config.Config, mux *http.ServeMux) *http.Server {
	h := handlers.RecoveryHandler()(mux)
	h = handlers.LoggingHandler(os.Stdout, h)
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
