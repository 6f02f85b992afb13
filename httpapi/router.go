package httpapi

import (
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/products", app.productsHandler)
	mux.HandleFunc("/products/", app.productHandler)
	mux.HandleFunc("/categories", app.categoriesHandler)
	mux.HandleFunc("/healthz", app.healthHandler)
	return WithRequestID(WithLogging(app.logger, mux))
}
