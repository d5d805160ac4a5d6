// Package transfermarkt scrapes squad rosters (name, position, shirt number)
// from transfermarkt league and club pages.
package transfermarkt

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"shirtstats/config"
	"shirtstats/db"

	"github.com/pkg/errors"
)

var ErrDuplicate = errors.New("league already scraped")

// Store persists scraped squads. db.Store implements it.
type Store interface {
	HasLeague(ctx context.Context, league string, season int) (bool, error)
	UpsertPlayers(ctx context.Context, records []db.PlayerRecord) error
	MarkLeague(ctx context.Context, league string, season int) error
}

type Scraper struct {
	Fetcher Fetcher
	// Optional, nothing is persisted when nil
	Store   Store
	Season  int
	Workers int
	// Scrape again leagues the store already has
	Force bool

	TimeMutex *sync.Mutex
	TimeSpent map[string]time.Duration
}

func New(fetcher Fetcher, store Store, cfg config.Config) *Scraper {
	return &Scraper{
		Fetcher:   fetcher,
		Store:     store,
		Season:    cfg.Season,
		Workers:   cfg.Workers,
		TimeMutex: &sync.Mutex{},
		TimeSpent: map[string]time.Duration{
			"fetch": 0,
			"mongo": 0,
			"total": 0,
		},
	}
}

func (s *Scraper) track(category string, start time.Time) {
	if s.TimeMutex == nil {
		return
	}
	s.TimeMutex.Lock()
	s.TimeSpent[category] += time.Since(start)
	s.TimeMutex.Unlock()
}

func (s *Scraper) fetch(ctx context.Context, link string) (string, error) {
	defer s.track("fetch", time.Now())
	return s.Fetcher.Fetch(ctx, link)
}

// Teams lists the clubs of a league for the configured season.
func (s *Scraper) Teams(ctx context.Context, league config.League) ([]Team, error) {
	link := LeagueURL(league.URL, s.Season)
	base, err := url.Parse(link)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid league url %s", link)
	}

	page, err := s.fetch(ctx, link)
	if err != nil {
		return nil, err
	}
	doc, err := parseHTML(page)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse league page %s", link)
	}

	teams := ParseTeams(doc, base)
	if len(teams) == 0 {
		return nil, errors.Errorf("no teams found for %s at %s", league.Name, link)
	}
	return teams, nil
}

func (s *Scraper) Squad(ctx context.Context, league config.League, team Team) ([]db.PlayerRecord, error) {
	page, err := s.fetch(ctx, team.URL)
	if err != nil {
		return nil, err
	}
	doc, err := parseHTML(page)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse squad page %s", team.URL)
	}

	players := ParseSquad(doc)
	for i := range players {
		players[i].Team = team.Name
		players[i].League = league.Name
		players[i].Season = s.Season
	}
	return players, nil
}

// ScrapeLeague returns every player of every club in the league, clubs in the
// order the league page lists them. Clubs that cannot be scraped are logged
// and left out.
func (s *Scraper) ScrapeLeague(ctx context.Context, league config.League) ([]db.PlayerRecord, error) {
	defer s.track("total", time.Now())

	if s.Store != nil && !s.Force {
		start := time.Now()
		done, err := s.Store.HasLeague(ctx, league.Name, s.Season)
		s.track("mongo", start)
		if err != nil {
			return nil, err
		}
		if done {
			return nil, errors.Wrapf(ErrDuplicate, "%s %d", league.Name, s.Season)
		}
	}

	teams, err := s.Teams(ctx, league)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "found teams", "league", league.Name, "count", len(teams))

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}

	squads := make([][]db.PlayerRecord, len(teams))
	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				slog.InfoContext(ctx, "processing team", "team", teams[i].Name, "url", teams[i].URL)
				squad, err := s.Squad(ctx, league, teams[i])
				if err != nil {
					slog.ErrorContext(ctx, "could not scrape team", "team", teams[i].Name, "err", err)
					continue
				}
				squads[i] = squad
			}
		}()
	}

	for i := range teams {
		if ctx.Err() != nil {
			break
		}
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var players []db.PlayerRecord
	for _, squad := range squads {
		players = append(players, squad...)
	}

	if s.Store != nil {
		start := time.Now()
		err = s.Store.UpsertPlayers(ctx, players)
		if err == nil {
			err = s.Store.MarkLeague(ctx, league.Name, s.Season)
		}
		s.track("mongo", start)
		if err != nil {
			return players, errors.Wrapf(err, "could not store %s", league.Name)
		}
	}

	return players, nil
}

func (s *Scraper) LogTimes(ctx context.Context) {
	if s.TimeMutex == nil {
		return
	}
	s.TimeMutex.Lock()
	defer s.TimeMutex.Unlock()
	for _, category := range []string{"fetch", "mongo", "total"} {
		slog.InfoContext(ctx, "time spent", "category", category, "seconds", s.TimeSpent[category].Seconds())
	}
}
