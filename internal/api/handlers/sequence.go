package handlers

import (
	"log"
	"net/http"
	"strings"

	"dispatch-route-engine/internal/api/dto"
	"dispatch-route-engine/internal/domain"
	"dispatch-route-engine/internal/services"
)

// SequenceHandler orders a rep's stops and builds the display itinerary.
// Stops posted without coordinates are resolved first, so the board can
// send raw pasted addresses directly.
type SequenceHandler struct {
	Resolver *services.Resolver
}

func (h *SequenceHandler) Sequence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.SequenceRequest
	if !decodeStrict(w, r, &req) {
		return
	}

	if len(req.Stops) == 0 {
		writeError(w, r, http.StatusBadRequest, "stops is required")
		return
	}
	if len(req.Stops) > maxBatchSize {
		writeError(w, r, http.StatusBadRequest, "too many stops in one batch")
		return
	}

	stops := make([]domain.Stop, 0, len(req.Stops))
	for _, s := range req.Stops {
		if strings.TrimSpace(s.Address) == "" {
			writeError(w, r, http.StatusBadRequest, "stop address must be non-empty")
			return
		}

		stop := domain.Stop{
			Address:           s.Address,
			OriginalTimeframe: s.Timeframe,
		}
		if s.Lat != nil && s.Lon != nil {
			stop.Coordinate = &domain.Coordinate{Lat: *s.Lat, Lon: *s.Lon}
		} else {
			gr, err := h.Resolver.ResolveOne(r.Context(), s.Address)
			if err != nil {
				log.Printf("sequence resolve failed: addr=%q err=%v", s.Address, err)
				writeError(w, r, http.StatusInternalServerError, "internal server error")
				return
			}
			// Unresolvable stops stay on the route without a coordinate;
			// the greedy ordering skips them for distance comparisons.
			stop.Coordinate = gr.Coordinate
		}

		stops = append(stops, stop)
	}

	var start *domain.Coordinate
	if req.Start != nil {
		start = &domain.Coordinate{Lat: req.Start.Lat, Lon: req.Start.Lon}
	}

	ordered, itinerary := services.Sequence(stops, start)

	res := dto.SequenceResponse{
		Stops:     make([]dto.SequencedStopResponse, 0, len(ordered)),
		Itinerary: make([]dto.ItineraryEntryResponse, 0, len(itinerary)),
	}
	for _, s := range ordered {
		out := dto.SequencedStopResponse{
			Address:   s.Address,
			Timeframe: s.OriginalTimeframe,
		}
		if s.Coordinate != nil {
			lat, lon := s.Coordinate.Lat, s.Coordinate.Lon
			out.Lat, out.Lon = &lat, &lon
		}
		res.Stops = append(res.Stops, out)
	}
	for _, e := range itinerary {
		out := dto.ItineraryEntryResponse{
			Kind:            e.Kind,
			TimeRange:       e.TimeRange,
			DurationMinutes: e.DurationMinutes,
			NeedsReschedule: e.NeedsReschedule,
		}
		if e.Stop != nil {
			out.Address = e.Stop.Address
		}
		res.Itinerary = append(res.Itinerary, out)
	}

	writeJSON(w, r, http.StatusOK, res)
}
