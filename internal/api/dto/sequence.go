package dto

type CoordinateDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type StopRequest struct {
	Address   string   `json:"address"`
	Timeframe string   `json:"timeframe,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
}

type SequenceRequest struct {
	Stops []StopRequest  `json:"stops"`
	Start *CoordinateDTO `json:"start,omitempty"`
}

type SequencedStopResponse struct {
	Address   string   `json:"address"`
	Timeframe string   `json:"timeframe,omitempty"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
}

type ItineraryEntryResponse struct {
	Kind            string `json:"kind"`
	TimeRange       string `json:"time_range"`
	DurationMinutes int    `json:"duration_minutes"`
	Address         string `json:"address,omitempty"`
	NeedsReschedule bool   `json:"needs_reschedule,omitempty"`
}

type SequenceResponse struct {
	Stops     []SequencedStopResponse  `json:"stops"`
	Itinerary []ItineraryEntryResponse `json:"itinerary"`
}
