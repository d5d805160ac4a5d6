// Package frequency counts shirt numbers per playing position.
package frequency

import (
	"sort"

	"shirtstats/db"

	"github.com/pkg/errors"
)

var ErrInvalidInput = errors.New("invalid input")

type (
	ShirtCount           = db.ShirtCount
	PositionFrequencyRow = db.PositionFrequencyRow
)

// AggregatedTable holds one row per position, in first-seen order.
type AggregatedTable []PositionFrequencyRow

// TopShirtsForPosition returns the n most frequent shirt numbers among records
// whose position matches exactly. Equal counts rank the smaller number first.
// Records without a number, or with one outside 1..99, are ignored. The
// result is never padded.
func TopShirtsForPosition(records []db.PlayerRecord, position string, n int) []ShirtCount {
	if n < 1 {
		return []ShirtCount{}
	}

	counts := map[int]int{}
	for _, r := range records {
		if r.Position != position || r.ShirtNumber == nil || !db.ValidShirtNumber(*r.ShirtNumber) {
			continue
		}
		counts[*r.ShirtNumber]++
	}

	top := make([]ShirtCount, 0, len(counts))
	for number, count := range counts {
		top = append(top, ShirtCount{Number: number, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count == top[j].Count {
			return top[i].Number < top[j].Number
		}
		return top[i].Count > top[j].Count
	})

	if len(top) > n {
		top = top[:n]
	}
	return top
}

// MostCommonShirt is TopShirtsForPosition with n = 1 as a scalar.
func MostCommonShirt(records []db.PlayerRecord, position string) (ShirtCount, bool) {
	top := TopShirtsForPosition(records, position, 1)
	if len(top) == 0 {
		return ShirtCount{}, false
	}
	return top[0], true
}

func AggregateAllPositions(records []db.PlayerRecord, n int) (AggregatedTable, error) {
	if err := validate(records, n); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	positions := []string{}
	for _, r := range records {
		if seen[r.Position] {
			continue
		}
		seen[r.Position] = true
		positions = append(positions, r.Position)
	}

	return aggregate(records, positions, n), nil
}

// AggregatePositions builds the table in the order of positions. Positions
// missing from records still get a row, with no numbers.
func AggregatePositions(records []db.PlayerRecord, positions []string, n int) (AggregatedTable, error) {
	if err := validate(records, n); err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "no positions requested")
	}

	return aggregate(records, positions, n), nil
}

func aggregate(records []db.PlayerRecord, positions []string, n int) AggregatedTable {
	table := make(AggregatedTable, 0, len(positions))
	for _, p := range positions {
		table = append(table, PositionFrequencyRow{
			Position:        p,
			TopShirtNumbers: TopShirtsForPosition(records, p, n),
		})
	}
	return table
}

func validate(records []db.PlayerRecord, n int) error {
	if n < 1 {
		return errors.Wrapf(ErrInvalidInput, "n must be at least 1, got %d", n)
	}
	if len(records) == 0 {
		return errors.Wrap(ErrInvalidInput, "no records")
	}
	for i, r := range records {
		if r.Position == "" {
			return errors.Wrapf(ErrInvalidInput, "record %d (%q) has no position", i, r.Name)
		}
	}
	return nil
}
