package domain

// A single job visit on a rep's board: the raw address as entered, the
// customer's requested timeframe (free text, e.g. "7:30am - 9am"), and the
// resolved coordinate when known.
type Stop struct {
	Address           string      `json:"address"`
	OriginalTimeframe string      `json:"original_timeframe,omitempty"`
	Coordinate        *Coordinate `json:"coordinate,omitempty"`
}

// Itinerary entry kinds.
const (
	EntryJob    = "job"
	EntryTravel = "travel"
)

// One line of the display itinerary. A sequenced route with n stops
// produces 2n-1 entries: a job entry per stop with a travel entry between
// consecutive stops. Stop is set on job entries only.
type ItineraryEntry struct {
	Kind            string `json:"kind"`
	TimeRange       string `json:"time_range"`
	DurationMinutes int    `json:"duration_minutes"`
	Stop            *Stop  `json:"stop,omitempty"`
	// NeedsReschedule marks a job whose computed window does not overlap
	// the customer's requested timeframe.
	NeedsReschedule bool `json:"needs_reschedule,omitempty"`
}
