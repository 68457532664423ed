package lookup

// IPAddress is the caller's public address as reported by the address
// service. It is not validated and is only passed on to the next stage.
type IPAddress string

// Coordinates is an approximate location. Both values are kept exactly as the
// geolocation service returned them (sign and fractional digits included).
type Coordinates struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// Pass is one window during which the satellite is visible overhead.
type Pass struct {
	Risetime int64 `json:"risetime"` // Unix seconds
	Duration int64 `json:"duration"` // seconds
}

// PassList holds passes in the order the pass source produced them.
type PassList []Pass
