package transfermarkt

import (
	"net/url"
	"testing"

	"shirtstats/db"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const leaguePage = `<html><body>
<table class="items"><tbody>
<tr>
  <td class="zentriert no-border-rechts"><a href="/manchester-city/startseite/verein/281/saison_id/2023"><img alt="Manchester City"></a></td>
  <td class="hauptlink no-border-links"><a title="Manchester City" href="/manchester-city/startseite/verein/281/saison_id/2023">Man City</a></td>
</tr>
<tr>
  <td class="hauptlink no-border-links"><a href="/fc-arsenal/startseite/verein/11/saison_id/2023">Arsenal FC</a></td>
</tr>
<tr>
  <td class="hauptlink no-border-links"><a title="Manchester City" href="/manchester-city/startseite/verein/281/saison_id/2023">Man City</a></td>
</tr>
<tr>
  <td class="hauptlink">not a team cell</td>
  <td class="hauptlink no-border-links">no link</td>
</tr>
</tbody></table>
</body></html>`

const squadPage = `<html><body>
<table class="items"><tbody>
<tr>
  <td class="zentriert rueckennummer"><div class="rn_nummer">31</div></td>
  <td class="posrela"><table class="inline-table">
    <tr><td rowspan="2"><img></td><td class="hauptlink"><a href="/ederson/profil/spieler/238223"> Ederson </a></td></tr>
    <tr><td>Goalkeeper</td></tr>
  </table></td>
</tr>
<tr>
  <td class="zentriert rueckennummer"><div class="rn_nummer">-</div></td>
  <td class="posrela"><table class="inline-table">
    <tr><td rowspan="2"><img></td><td class="hauptlink"><a href="/youth/profil/spieler/1">Youth Player</a></td></tr>
    <tr><td> Centre-Back </td></tr>
  </table></td>
</tr>
<tr>
  <td class="zentriert rueckennummer"><div class="rn_nummer">9</div></td>
  <td class="posrela"><table class="inline-table">
    <tr><td rowspan="2"><img></td><td class="hauptlink"><a href="/erling-haaland/profil/spieler/418560">Erling Haaland</a></td></tr>
    <tr><td>Centre-Forward</td></tr>
  </table></td>
</tr>
</tbody></table>
</body></html>`

func TestLeagueURL(t *testing.T) {
	require.Equal(t,
		"https://www.transfermarkt.com/premier-league/startseite/wettbewerb/GB1/plus/?saison_id=2023",
		LeagueURL("https://www.transfermarkt.com/premier-league/startseite/wettbewerb/GB1", 2023),
	)
	require.Equal(t,
		"https://www.transfermarkt.com/premier-league/startseite/wettbewerb/GB1/plus/?saison_id=2021",
		LeagueURL("https://www.transfermarkt.com/premier-league/startseite/wettbewerb/GB1/", 2021),
	)
	require.Equal(t,
		"https://www.transfermarkt.com/laliga/startseite/wettbewerb/ES1/plus/?saison_id=2019",
		LeagueURL("https://www.transfermarkt.com/laliga/startseite/wettbewerb/ES1/plus/?saison_id=2019", 2023),
	)
}

func TestParseTeams(t *testing.T) {
	doc, err := parseHTML(leaguePage)
	require.NoError(t, err)
	base, err := url.Parse("https://www.transfermarkt.com/premier-league/startseite/wettbewerb/GB1/plus/?saison_id=2023")
	require.NoError(t, err)

	expected := []Team{
		{Name: "Manchester City", URL: "https://www.transfermarkt.com/manchester-city/startseite/verein/281/saison_id/2023"},
		{Name: "Arsenal FC", URL: "https://www.transfermarkt.com/fc-arsenal/startseite/verein/11/saison_id/2023"},
	}
	if diff := cmp.Diff(expected, ParseTeams(doc, base)); diff != "" {
		t.Fatalf("unexpected teams (-want +got):\n%s", diff)
	}
}

func TestParseSquad(t *testing.T) {
	doc, err := parseHTML(squadPage)
	require.NoError(t, err)

	expected := []db.PlayerRecord{
		{Name: "Ederson", Position: "Goalkeeper", ShirtNumber: db.Shirt(31)},
		{Name: "Youth Player", Position: "Centre-Back"},
		{Name: "Erling Haaland", Position: "Centre-Forward", ShirtNumber: db.Shirt(9)},
	}
	if diff := cmp.Diff(expected, ParseSquad(doc)); diff != "" {
		t.Fatalf("unexpected squad (-want +got):\n%s", diff)
	}
}

func TestParseSquadEmpty(t *testing.T) {
	doc, err := parseHTML("<html><body><p>Access denied</p></body></html>")
	require.NoError(t, err)
	require.Empty(t, ParseSquad(doc))
}
