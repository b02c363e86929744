package handlers

import (
	"log"
	"net/http"

	"dispatch-route-engine/internal/api/dto"
	"dispatch-route-engine/internal/domain"
	"dispatch-route-engine/internal/ports"
)

// RouteHandler fetches the drawable road route for an ordered coordinate
// list. Routing failures are a degraded mode, not an error: the response
// carries a null route and the board falls back to markers.
type RouteHandler struct {
	Provider ports.RouteProvider
}

func (h *RouteHandler) Route(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.RouteRequest
	if !decodeStrict(w, r, &req) {
		return
	}

	coords := make([]domain.Coordinate, 0, len(req.Coordinates))
	for _, c := range req.Coordinates {
		coord := domain.Coordinate{Lat: c.Lat, Lon: c.Lon}
		if !coord.Valid() {
			writeError(w, r, http.StatusBadRequest, "coordinate out of range")
			return
		}
		coords = append(coords, coord)
	}

	info, err := h.Provider.FetchRoute(r.Context(), coords)
	if err != nil {
		log.Printf("fetch route failed: %v", err)
		writeJSON(w, r, http.StatusOK, dto.RouteResponse{Route: nil})
		return
	}
	if info == nil {
		writeJSON(w, r, http.StatusOK, dto.RouteResponse{Route: nil})
		return
	}

	out := &dto.RouteInfoResponse{
		DistanceMiles:   info.DistanceMiles,
		DurationMinutes: info.DurationMinutes,
		Geometry:        info.Geometry,
		Coordinates:     make([]dto.CoordinateDTO, 0, len(info.Coordinates)),
	}
	for _, c := range info.Coordinates {
		out.Coordinates = append(out.Coordinates, dto.CoordinateDTO{Lat: c.Lat, Lon: c.Lon})
	}

	writeJSON(w, r, http.StatusOK, dto.RouteResponse{Route: out})
}
