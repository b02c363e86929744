package domain

// Outcome of resolving one raw address string. Exactly one of Coordinate
// or Err is meaningful: a nil coordinate with a non-empty error message is
// a legitimate, permanent negative entry (until the cache is cleared),
// not a transient failure.
type GeocodeResult struct {
	Coordinate *Coordinate `json:"coordinate"`
	Err        string      `json:"error,omitempty"`
}

// Found reports whether the result carries usable coordinates.
func (r GeocodeResult) Found() bool { return r.Coordinate != nil }
