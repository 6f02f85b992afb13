// Package httpapi exposes the HTTP API layer of the catalog service.
//
// It is a thin adapter: requests are validated and translated into catalog
// operations, domain failures are mapped to status codes, and records are
// rendered through response DTOs so the stored representation never leaks
// into the API surface.
package httpapi

import (
	"log/slog"
	"time"

	"github.com/poiesic/catalogit"
)

// App holds the HTTP layer's dependencies.
type App struct {
	Catalog *catalogit.Catalog
	logger  *slog.Logger
	started time.Time
}

// NewApp creates the HTTP application around an open catalog.
// A nil logger falls back to slog.Default().
func NewApp(catalog *catalogit.Catalog, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{Catalog: catalog, logger: logger, started: time.Now()}
}
