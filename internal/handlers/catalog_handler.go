package handlers

import (
	"net/http"

	"github.com/watchnext/backend/internal/models"
)

// CatalogOptions lists the streaming services and genres offered during
// onboarding.
func CatalogOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.CatalogOptions{
		StreamingServices: models.StreamingServices,
		Genres:            models.Genres,
	}))
}
