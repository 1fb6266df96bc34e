package climate

import (
	"database/sql"
	"log/slog"
	"net/http"

	"climate-server/internal/modules/climate/controller"
	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/service"
)

// RegisterFeature wires repository, service and controller onto mux.
// observer may be nil.
func RegisterFeature(mux *http.ServeMux, db *sql.DB, observer repository.QueryObserver, logger *slog.Logger) {
	climateRepository := repository.NewRepository(db, observer, logger)
	climateService := service.NewService(climateRepository, logger)
	climateController := controller.NewClimateController(climateService, logger)
	climateController.RegisterRoutes(mux)
}
