package handlers

import (
	"log"
	"net/http"
	"strings"

	"dispatch-route-engine/internal/api/dto"
	"dispatch-route-engine/internal/services"
)

const maxBatchSize = 200

// ResolveHandler exposes batch address resolution to the dispatch board.
type ResolveHandler struct {
	Resolver *services.Resolver
}

func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.ResolveRequest
	if !decodeStrict(w, r, &req) {
		return
	}

	if len(req.Addresses) == 0 {
		writeError(w, r, http.StatusBadRequest, "addresses is required")
		return
	}
	if len(req.Addresses) > maxBatchSize {
		writeError(w, r, http.StatusBadRequest, "too many addresses in one batch")
		return
	}
	for _, a := range req.Addresses {
		if strings.TrimSpace(a) == "" {
			writeError(w, r, http.StatusBadRequest, "addresses must be non-empty")
			return
		}
	}

	results, err := h.Resolver.Resolve(r.Context(), req.Addresses)
	if err != nil {
		log.Printf("resolve failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ResolveResponse{
		Results: make([]dto.ResolvedAddressResponse, 0, len(results)),
	}
	for i, gr := range results {
		out := dto.ResolvedAddressResponse{
			Address: req.Addresses[i],
			Error:   gr.Err,
		}
		if gr.Coordinate != nil {
			lat, lon := gr.Coordinate.Lat, gr.Coordinate.Lon
			out.Lat, out.Lon = &lat, &lon
		}
		res.Results = append(res.Results, out)
	}

	writeJSON(w, r, http.StatusOK, res)
}
