package dto

type ResolveRequest struct {
	Addresses []string `json:"addresses"`
}

// One resolved address. Lat/Lon are null when resolution failed; Error
// carries the terminal failure message in that case.
type ResolvedAddressResponse struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Error   string   `json:"error,omitempty"`
}

type ResolveResponse struct {
	Results []ResolvedAddressResponse `json:"results"`
}
