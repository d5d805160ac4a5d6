package frequency

// Abbreviations in the order the analysis reports them by default.
var Abbreviations = []string{"GK", "CB", "LB", "RB", "DM", "CM", "AM", "LW", "RW", "SS", "CF"}

var Positions = map[string]string{
	"GK": "Goalkeeper",
	"CB": "Centre-Back",
	"LB": "Left-Back",
	"RB": "Right-Back",
	"DM": "Defensive Midfield",
	"CM": "Central Midfield",
	"AM": "Attacking Midfield",
	"LW": "Left Winger",
	"RW": "Right Winger",
	"SS": "Second Striker",
	"CF": "Centre-Forward",
}

// ResolvePosition expands a known abbreviation, anything else is returned as is.
func ResolvePosition(s string) string {
	if full, ok := Positions[s]; ok {
		return full
	}
	return s
}

// ResolvePositions expands every entry and drops repeats, so "GK" and
// "Goalkeeper" give a single row. First occurrences keep their order.
func ResolvePositions(list []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(list))
	for _, s := range list {
		full := ResolvePosition(s)
		if seen[full] {
			continue
		}
		seen[full] = true
		out = append(out, full)
	}
	return out
}
