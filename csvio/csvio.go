// Package csvio reads scraped rosters and writes rosters and frequency tables
// as CSV.
package csvio

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"shirtstats/db"
	"shirtstats/frequency"

	"github.com/pkg/errors"
)

var RecordHeader = []string{"name", "position", "shirt_no", "team"}

// ReadRecords reads a roster CSV. Columns are located through the header, so
// order and extra columns do not matter.
func ReadRecords(r io.Reader) ([]db.PlayerRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty csv, no header")
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not read csv header")
	}

	columns := map[string]int{}
	for i, h := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	nameCol, ok := columns["name"]
	if !ok {
		return nil, errors.New("missing column name")
	}
	positionCol, ok := columns["position"]
	if !ok {
		return nil, errors.New("missing column position")
	}
	shirtCol, ok := columns["shirt_no"]
	if !ok {
		shirtCol, ok = columns["shirtNumber"]
		if !ok {
			return nil, errors.New("missing column shirt_no")
		}
	}
	teamCol, hasTeam := columns["team"]
	leagueCol, hasLeague := columns["league"]
	seasonCol, hasSeason := columns["season"]

	records := []db.PlayerRecord{}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "could not read csv line %d", line)
		}

		record := db.PlayerRecord{
			Name:        cell(row, nameCol),
			Position:    cell(row, positionCol),
			ShirtNumber: ParseShirtNumber(cell(row, shirtCol)),
		}
		if hasTeam {
			record.Team = cell(row, teamCol)
		}
		if hasLeague {
			record.League = cell(row, leagueCol)
		}
		if hasSeason {
			record.Season, _ = strconv.Atoi(cell(row, seasonCol))
		}
		records = append(records, record)
	}

	return records, nil
}

// ParseShirtNumber returns nil for anything that is not a squad number
// between 1 and 99, which covers the "-" placeholder used for unassigned
// numbers.
func ParseShirtNumber(s string) *int {
	s = strings.TrimSpace(s)
	// pandas writes float columns with a trailing .0 when a column has gaps
	s = strings.TrimSuffix(s, ".0")
	n, err := strconv.Atoi(s)
	if err != nil || !db.ValidShirtNumber(n) {
		return nil
	}
	return &n
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func WriteRecords(w io.Writer, records []db.PlayerRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(RecordHeader); err != nil {
		return errors.Wrap(err, "could not write header")
	}

	for _, r := range records {
		number := ""
		if r.ShirtNumber != nil {
			number = strconv.Itoa(*r.ShirtNumber)
		}
		if err := writer.Write([]string{r.Name, r.Position, number, r.Team}); err != nil {
			return errors.Wrapf(err, "could not write record for %s", r.Name)
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "could not flush records")
}

func TableHeader(n int) []string {
	if n <= 1 {
		return []string{"position", "shirt_no", "frequency"}
	}
	header := []string{"position"}
	for i := 1; i <= n; i++ {
		header = append(header, "shirt_no_"+strconv.Itoa(i), "frequency_"+strconv.Itoa(i))
	}
	return header
}

// WriteTable writes one line per position. Positions with fewer than n
// numbers get empty cells so every line has the same width.
func WriteTable(w io.Writer, table frequency.AggregatedTable, n int) error {
	if n < 1 {
		n = 1
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(TableHeader(n)); err != nil {
		return errors.Wrap(err, "could not write header")
	}

	for _, row := range table {
		line := make([]string, 1, 1+2*n)
		line[0] = row.Position
		for i := 0; i < n; i++ {
			if i < len(row.TopShirtNumbers) {
				top := row.TopShirtNumbers[i]
				line = append(line, strconv.Itoa(top.Number), strconv.Itoa(top.Count))
			} else {
				line = append(line, "", "")
			}
		}
		if err := writer.Write(line); err != nil {
			return errors.Wrapf(err, "could not write row for %s", row.Position)
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "could not flush table")
}
