package transfermarkt

import (
	"fmt"
	"net/url"
	"strings"

	"shirtstats/csvio"
	"shirtstats/db"

	"github.com/PuerkitoBio/goquery"
)

type Team struct {
	Name string
	URL  string
}

// LeagueURL points a league overview at a season, unless the url already
// names one.
func LeagueURL(league string, season int) string {
	if strings.Contains(league, "?saison_id=") {
		return league
	}
	return strings.TrimRight(league, "/") + fmt.Sprintf("/plus/?saison_id=%d", season)
}

// ParseTeams lists the clubs of a league overview page. Links are resolved
// against base, duplicates are dropped.
func ParseTeams(doc *goquery.Document, base *url.URL) []Team {
	teams := []Team{}
	seen := map[string]bool{}

	doc.Find("td.hauptlink.no-border-links").Each(func(_ int, td *goquery.Selection) {
		a := td.Find("a").First()
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		link, err := base.Parse(href)
		if err != nil {
			return
		}

		full := link.String()
		if seen[full] {
			return
		}
		seen[full] = true

		name := strings.TrimSpace(a.AttrOr("title", ""))
		if name == "" {
			name = strings.TrimSpace(a.Text())
		}
		teams = append(teams, Team{Name: name, URL: full})
	})

	return teams
}

// ParseSquad reads the squad table of a club page. Shirt numbers sit in
// separate cells and are paired with players by position on the page.
func ParseSquad(doc *goquery.Document) []db.PlayerRecord {
	numbers := doc.Find("div.rn_nummer").Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})

	players := []db.PlayerRecord{}
	doc.Find("table.items td.posrela").Each(func(i int, td *goquery.Selection) {
		record := db.PlayerRecord{
			Name:     strings.TrimSpace(td.Find("td.hauptlink").First().Text()),
			Position: strings.TrimSpace(td.Find("td").Last().Text()),
		}
		if i < len(numbers) {
			record.ShirtNumber = csvio.ParseShirtNumber(numbers[i])
		}
		players = append(players, record)
	})

	return players
}

func parseHTML(page string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(page))
}
