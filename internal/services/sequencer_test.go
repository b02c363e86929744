package services

import (
	"testing"

	"dispatch-route-engine/internal/domain"
)

func coord(lat, lon float64) *domain.Coordinate {
	return &domain.Coordinate{Lat: lat, Lon: lon}
}

func orderedAddresses(stops []domain.Stop) []string {
	out := make([]string, 0, len(stops))
	for _, s := range stops {
		out = append(out, s.Address)
	}
	return out
}

func TestDriveBufferTiers(t *testing.T) {
	tests := []struct {
		stops int
		want  int
	}{
		{1, 90},
		{2, 90},
		{3, 90},
		{4, 60},
		{5, 30},
		{8, 30},
	}

	for _, tt := range tests {
		if got := driveBufferMinutes(tt.stops); got != tt.want {
			t.Errorf("driveBufferMinutes(%d) = %d, want %d", tt.stops, got, tt.want)
		}
	}
}

// permutations returns every ordering of idx.
func permutations(idx []int) [][]int {
	if len(idx) <= 1 {
		return [][]int{append([]int(nil), idx...)}
	}
	var out [][]int
	for i := range idx {
		rest := make([]int, 0, len(idx)-1)
		rest = append(rest, idx[:i]...)
		rest = append(rest, idx[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]int{idx[i]}, p...))
		}
	}
	return out
}

func TestSequenceGreedyMatchesBruteForceSmallN(t *testing.T) {
	start := domain.Coordinate{Lat: 33.40, Lon: -111.90}

	// Four same-hour stops spread east of the start point. For this
	// layout the greedy nearest-neighbor chain is also the permutation
	// with minimal running distance.
	stops := []domain.Stop{
		{Address: "C", OriginalTimeframe: "9am", Coordinate: coord(33.40, -111.84)},
		{Address: "A", OriginalTimeframe: "9am", Coordinate: coord(33.40, -111.88)},
		{Address: "D", OriginalTimeframe: "9am", Coordinate: coord(33.40, -111.80)},
		{Address: "B", OriginalTimeframe: "9am", Coordinate: coord(33.40, -111.86)},
	}

	pathLength := func(perm []int) float64 {
		total := 0.0
		ref := start
		for _, i := range perm {
			next := *stops[i].Coordinate
			total += domain.Haversine(ref, next)
			ref = next
		}
		return total
	}

	best := []int(nil)
	bestLen := 0.0
	for _, perm := range permutations([]int{0, 1, 2, 3}) {
		if l := pathLength(perm); best == nil || l < bestLen {
			best, bestLen = perm, l
		}
	}

	want := make([]string, 0, len(best))
	for _, i := range best {
		want = append(want, stops[i].Address)
	}

	ordered, _ := Sequence(stops, &start)
	got := orderedAddresses(ordered)

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("greedy order = %v, brute-force minimal = %v", got, want)
		}
	}
}

func TestSequencePermutationInvariant(t *testing.T) {
	stops := []domain.Stop{
		{Address: "A", OriginalTimeframe: "1pm", Coordinate: coord(33.30, -111.80)},
		{Address: "B", Coordinate: coord(33.50, -111.90)},
		{Address: "C", OriginalTimeframe: "9am", Coordinate: coord(33.40, -111.70)},
		{Address: "D", OriginalTimeframe: "garbled"},
	}

	ordered, itinerary := Sequence(stops, nil)

	if len(ordered) != len(stops) {
		t.Fatalf("ordered = %d stops, want %d", len(ordered), len(stops))
	}

	seen := map[string]int{}
	for _, s := range ordered {
		seen[s.Address]++
	}
	for _, s := range stops {
		if seen[s.Address] != 1 {
			t.Errorf("stop %q appears %d times in output", s.Address, seen[s.Address])
		}
	}

	if want := 2*len(stops) - 1; len(itinerary) != want {
		t.Errorf("itinerary entries = %d, want %d", len(itinerary), want)
	}
}

func TestSequenceBucketOrdering(t *testing.T) {
	stops := []domain.Stop{
		{Address: "afternoon", OriginalTimeframe: "1pm", Coordinate: coord(33.40, -111.80)},
		{Address: "unscheduled", Coordinate: coord(33.40, -111.81)},
		{Address: "morning", OriginalTimeframe: "9am", Coordinate: coord(33.40, -111.82)},
	}

	ordered, _ := Sequence(stops, nil)
	got := orderedAddresses(ordered)

	want := []string{"morning", "afternoon", "unscheduled"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bucket order = %v, want %v", got, want)
		}
	}
}

func TestSequenceReferenceCarriesAcrossBuckets(t *testing.T) {
	// Morning ends far east; the afternoon bucket must start from there,
	// not from the rep's home.
	home := domain.Coordinate{Lat: 33.40, Lon: -111.95}
	stops := []domain.Stop{
		{Address: "pm-near-home", OriginalTimeframe: "1pm", Coordinate: coord(33.40, -111.94)},
		{Address: "pm-near-east", OriginalTimeframe: "1pm", Coordinate: coord(33.40, -111.70)},
		{Address: "am-east", OriginalTimeframe: "9am", Coordinate: coord(33.40, -111.71)},
	}

	ordered, _ := Sequence(stops, &home)
	got := orderedAddresses(ordered)

	want := []string{"am-east", "pm-near-east", "pm-near-home"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSequenceNoStartRefUsesInputOrder(t *testing.T) {
	stops := []domain.Stop{
		{Address: "far", OriginalTimeframe: "9am", Coordinate: coord(33.40, -111.70)},
		{Address: "near", OriginalTimeframe: "9am", Coordinate: coord(33.40, -111.95)},
	}

	ordered, _ := Sequence(stops, nil)
	if ordered[0].Address != "far" {
		t.Errorf("with no start reference the first stop follows input order, got %q", ordered[0].Address)
	}
}

func TestSequenceItineraryClockAndBuffers(t *testing.T) {
	stops := []domain.Stop{
		{Address: "A", Coordinate: coord(33.40, -111.80)},
		{Address: "B", Coordinate: coord(33.41, -111.81)},
	}

	_, itinerary := Sequence(stops, nil)

	if len(itinerary) != 3 {
		t.Fatalf("itinerary entries = %d, want 3", len(itinerary))
	}

	checks := []struct {
		kind      string
		timeRange string
		duration  int
	}{
		{domain.EntryJob, "7:30 AM - 9:00 AM", 90},
		{domain.EntryTravel, "9:00 AM - 10:30 AM", 90},
		{domain.EntryJob, "10:30 AM - 12:00 PM", 90},
	}

	for i, want := range checks {
		e := itinerary[i]
		if e.Kind != want.kind || e.TimeRange != want.timeRange || e.DurationMinutes != want.duration {
			t.Errorf("entry %d = {%s %q %d}, want {%s %q %d}",
				i, e.Kind, e.TimeRange, e.DurationMinutes, want.kind, want.timeRange, want.duration)
		}
	}

	if itinerary[0].Stop == nil || itinerary[0].Stop.Address != "A" {
		t.Error("job entries must reference their stop")
	}
	if itinerary[1].Stop != nil {
		t.Error("travel entries must not reference a stop")
	}
}

func TestSequenceMismatchFlagging(t *testing.T) {
	// Both stops request the first morning window; whichever is scheduled
	// second lands at 10:30 AM and must be flagged.
	stops := []domain.Stop{
		{Address: "first", OriginalTimeframe: "7:30am - 9am", Coordinate: coord(33.40, -111.80)},
		{Address: "second", OriginalTimeframe: "7:30am - 9am", Coordinate: coord(33.40, -111.70)},
	}
	start := domain.Coordinate{Lat: 33.40, Lon: -111.81}

	_, itinerary := Sequence(stops, &start)

	if itinerary[0].NeedsReschedule {
		t.Errorf("first job overlaps its requested window, must not be flagged: %+v", itinerary[0])
	}
	if !itinerary[2].NeedsReschedule {
		t.Errorf("second job (10:30 AM) cannot meet a 7:30-9:00 request, must be flagged: %+v", itinerary[2])
	}

	// A missing timeframe is never flagged.
	_, itin := Sequence([]domain.Stop{
		{Address: "open", Coordinate: coord(33.40, -111.80)},
		{Address: "late", Coordinate: coord(33.40, -111.79)},
	}, &start)
	for _, e := range itin {
		if e.NeedsReschedule {
			t.Errorf("stop without a timeframe flagged: %+v", e)
		}
	}
}
