package services

import (
	"math"
	"sort"

	"dispatch-route-engine/internal/domain"
)

// Route sequencing: order a rep's stops into a driveable visiting order
// under requested-time-window constraints and produce the display
// itinerary with estimated clock times.
//
// The algorithm is greedy nearest-neighbor inside hour buckets. It
// minimizes immediate travel distance at each step and does not attempt
// global route optimization; determinism and explainability matter more
// here than optimality.

// Itinerary clock anchor and per-stop service window.
const (
	routeAnchorMinutes   = 7*60 + 30
	serviceWindowMinutes = 90
)

// driveBufferMinutes picks the fixed per-route travel estimate from the
// total stop count. Short routes get generous buffers; packed days get
// tight ones. A display estimate, not a measured driving time.
func driveBufferMinutes(stopCount int) int {
	switch {
	case stopCount <= 3:
		return 90
	case stopCount == 4:
		return 60
	default:
		return 30
	}
}

// Sequence orders stops into hour buckets, greedily chains them by
// haversine distance starting from startRef (the rep's home when known),
// and builds the itinerary. The returned stop list is always a permutation
// of the input; the itinerary has 2n-1 entries for n stops.
func Sequence(stops []domain.Stop, startRef *domain.Coordinate) ([]domain.Stop, []domain.ItineraryEntry) {
	if len(stops) == 0 {
		return []domain.Stop{}, []domain.ItineraryEntry{}
	}

	ordered := orderStops(stops, startRef)
	itinerary := buildItinerary(ordered)

	return ordered, itinerary
}

func orderStops(stops []domain.Stop, startRef *domain.Coordinate) []domain.Stop {
	// Bucket by requested hour, preserving input order within a bucket.
	buckets := make(map[int][]domain.Stop)
	hours := make([]int, 0)
	for _, stop := range stops {
		hour := unscheduledHour
		if h, ok := bucketHour(stop.OriginalTimeframe); ok {
			hour = h
		}
		if _, seen := buckets[hour]; !seen {
			hours = append(hours, hour)
		}
		buckets[hour] = append(buckets[hour], stop)
	}
	sort.Ints(hours)

	ordered := make([]domain.Stop, 0, len(stops))

	// The reference point carries across bucket boundaries: the last stop
	// of one bucket is where the rep starts the next.
	ref := startRef

	for _, hour := range hours {
		remaining := buckets[hour]
		for len(remaining) > 0 {
			next := 0
			if ref != nil {
				best := math.MaxFloat64
				for i, stop := range remaining {
					if stop.Coordinate == nil {
						continue
					}
					if d := domain.Haversine(*ref, *stop.Coordinate); d < best {
						best = d
						next = i
					}
				}
			}

			chosen := remaining[next]
			ordered = append(ordered, chosen)
			remaining = append(remaining[:next], remaining[next+1:]...)

			if chosen.Coordinate != nil {
				ref = chosen.Coordinate
			}
		}
	}

	return ordered
}

func buildItinerary(ordered []domain.Stop) []domain.ItineraryEntry {
	buffer := driveBufferMinutes(len(ordered))
	entries := make([]domain.ItineraryEntry, 0, 2*len(ordered)-1)

	clock := routeAnchorMinutes
	for i := range ordered {
		stop := ordered[i]

		jobStart := clock
		jobEnd := clock + serviceWindowMinutes
		entries = append(entries, domain.ItineraryEntry{
			Kind:            domain.EntryJob,
			TimeRange:       formatClockRange(jobStart, jobEnd),
			DurationMinutes: serviceWindowMinutes,
			Stop:            &ordered[i],
			NeedsReschedule: needsReschedule(stop.OriginalTimeframe, jobStart, jobEnd),
		})
		clock = jobEnd

		if i < len(ordered)-1 {
			entries = append(entries, domain.ItineraryEntry{
				Kind:            domain.EntryTravel,
				TimeRange:       formatClockRange(clock, clock+buffer),
				DurationMinutes: buffer,
			})
			clock += buffer
		}
	}

	return entries
}

// needsReschedule flags a stop whose requested window cannot overlap its
// scheduled window. A missing or unparseable timeframe on either side is
// treated as non-conflicting: assume valid rather than false-alarm.
func needsReschedule(requested string, scheduledStart, scheduledEnd int) bool {
	if requested == "" {
		return false
	}

	reqStart, reqEnd, ok := clockRange(requested)
	if !ok {
		return false
	}

	return !rangesOverlap(reqStart, reqEnd, scheduledStart, scheduledEnd)
}
