package stream

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ssoward/evyroad/internal/api/middleware"
	"github.com/ssoward/evyroad/internal/api/models"
	"github.com/ssoward/evyroad/internal/trip"
)

// Handler upgrades subscribers onto the hub. Feed access follows trip
// visibility: the caller must be able to read the trip to follow it.
type Handler struct {
	hub      *Hub
	trips    *trip.Service
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates the websocket handler.
func NewHandler(hub *Hub, trips *trip.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:   hub,
		trips: trips,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.With().Str("component", "stream_handler").Logger(),
	}
}

// ServeTrip handles GET /stream/trips/{id}: upgrades the connection
// and pumps trip events until either side closes.
func (h *Handler) ServeTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "id")
	userID := middleware.GetUserID(r.Context())

	if _, err := h.trips.Get(r.Context(), userID, tripID); err != nil {
		traceID := middleware.GetRequestID(r.Context())
		if errors.Is(err, trip.ErrTripNotFound) {
			problem := models.NewNotFound(traceID, "trip not found")
			problem.Instance = r.URL.Path
			problem.Write(w)
			return
		}
		problem := models.NewInternalError(traceID, "failed to load trip")
		problem.Instance = r.URL.Path
		problem.Write(w)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Debug().Err(err).Str("trip_id", tripID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	client := h.hub.Register(tripID)
	defer h.hub.Unregister(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range client.Send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	// The feed is one-way; reads only detect the client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	// Unregistering closes the send channel, which stops the writer.
	h.hub.Unregister(client)
	<-done
}
