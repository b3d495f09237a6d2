package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssoward/evyroad/internal/api/response"
	"github.com/ssoward/evyroad/internal/route"
)

// RouteHandler serves the predefined route catalog.
type RouteHandler struct {
	catalog *route.Catalog
}

// NewRouteHandler creates a RouteHandler.
func NewRouteHandler(catalog *route.Catalog) *RouteHandler {
	return &RouteHandler{catalog: catalog}
}

type routeListResponse struct {
	Routes []route.Availability `json:"routes"`
}

// List handles GET /routes, evaluating seasonal availability at
// request time.
func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	response.JSON(w, r, http.StatusOK, routeListResponse{
		Routes: h.catalog.Availability(time.Now()),
	})
}

// Get handles GET /routes/{id}.
func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, found)
}
