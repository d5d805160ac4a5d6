package db

type PlayerRecord struct {
	// Player name as shown on the squad page, kept for traceability
	Name string `bson:"name"`
	// Free-form position label, empty means missing
	Position string `bson:"position"`
	// nil when the source had no number recorded
	ShirtNumber *int `bson:"shirt_no,omitempty"`

	Team   string `bson:"team,omitempty"`
	League string `bson:"league,omitempty"`
	Season int    `bson:"season,omitempty"`
}

// Shirt is a convenience for building records with a known number.
func Shirt(n int) *int {
	return &n
}

// Squad numbers run from 1 to 99.
const (
	MinShirtNumber = 1
	MaxShirtNumber = 99
)

func ValidShirtNumber(n int) bool {
	return n >= MinShirtNumber && n <= MaxShirtNumber
}

type ShirtCount struct {
	Number int `bson:"shirt_no"`
	Count  int `bson:"frequency"`
}

type PositionFrequencyRow struct {
	Position        string       `bson:"position"`
	TopShirtNumbers []ShirtCount `bson:"top"`
}
