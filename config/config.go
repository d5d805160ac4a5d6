package config

import (
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/pkg/errors"
	"github.com/titanous/json5"
)

type League struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Config struct {
	// Applied to every request, transfermarkt rejects clients without a browser User-Agent
	Headers map[string]string `json:"headers"`
	Season  int               `json:"season"`
	Leagues []League          `json:"leagues"`
	Workers int               `json:"workers"`
	Retries int               `json:"retries"`
	// Use a headless browser instead of plain HTTP
	Browser  bool   `json:"browser"`
	MongoURI string `json:"mongo_uri"`
	Database string `json:"database"`
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 Edg/122.0.0.0"

func Default() Config {
	return Config{
		Headers: map[string]string{"User-Agent": userAgent},
		Season:  2023,
		Leagues: []League{
			{Name: "Premier_League", URL: "https://www.transfermarkt.com/premier-league/startseite/wettbewerb/GB1"},
			{Name: "LaLiga", URL: "https://www.transfermarkt.com/primera-division/startseite/wettbewerb/ES1"},
			{Name: "Bundesliga", URL: "https://www.transfermarkt.com/bundesliga/startseite/wettbewerb/L1"},
			{Name: "Serie_A", URL: "https://www.transfermarkt.com/serie-a/startseite/wettbewerb/IT1"},
			{Name: "Ligue_1", URL: "https://www.transfermarkt.com/ligue-1/startseite/wettbewerb/FR1"},
		},
		Workers:  1,
		Retries:  3,
		MongoURI: "mongodb://localhost:27017",
		Database: "shirtstats",
	}
}

// Load reads the config at path, then <name>.local.<ext> next to it, each
// merged over Default. Missing files are skipped, so no file at all only
// yields the defaults. MONGO_URI overrides the configured mongo uri.
func Load(path string) (Config, error) {
	out := Default()
	if path != "" {
		for _, p := range []string{path, LocalPath(path)} {
			if err := mergeFile(&out, p); err != nil {
				return out, err
			}
		}
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		out.MongoURI = uri
	}
	return out, nil
}

// LocalPath is the uncommitted override of a config file:
// config.json5 becomes config.local.json5.
func LocalPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

func mergeFile(out *Config, path string) error {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) || (err == nil && len(contents) == 0) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "could not read %s", path)
	}

	var file Config
	if err := json5.Unmarshal(contents, &file); err != nil {
		return errors.Wrapf(err, "could not parse %s", path)
	}
	return errors.Wrapf(mergo.Merge(out, file, mergo.WithOverride), "could not merge %s", path)
}

// Filter keeps the leagues whose name is in names, in the order of names.
func (c Config) Filter(names []string) ([]League, error) {
	if len(names) == 0 {
		return c.Leagues, nil
	}
	var out []League
	for _, name := range names {
		found := false
		for _, l := range c.Leagues {
			if strings.EqualFold(l.Name, name) {
				out = append(out, l)
				found = true
				break
			}
		}
		if !found {
			return nil, errors.Errorf("unknown league %q", name)
		}
	}
	return out, nil
}
