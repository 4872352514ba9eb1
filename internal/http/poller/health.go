package poller

import (
	"net/http"

	"github.com/MrJamesThe3rd/lumen/internal/http/respond"
)

// Health reports liveness together with a poller snapshot.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, healthResponse{
		Status:    "healthy",
		Service:   "lumen-ingest",
		Poller:    toStatus(h.poller.Status(r.Context())),
		Timestamp: h.now().UTC(),
	})
}
