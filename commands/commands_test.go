package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"shirtstats/db"
	"shirtstats/frequency"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestRunAnalyze(t *testing.T) {
	dir := t.TempDir()
	premier := writeCSV(t, dir, "Premier_League.csv", "name,position,shirt_no\nA,Goalkeeper,1\nB,Goalkeeper,1\nC,Goalkeeper,13\n")
	laliga := writeCSV(t, dir, "LaLiga.csv", "name,position,shirt_no\nD,Centre-Back,4\nE,Goalkeeper,-\n")
	out := filepath.Join(dir, "frequency.csv")

	var stdout bytes.Buffer
	err := runAnalyze(context.Background(), analyzeOptions{n: 1, out: out}, []string{premier, laliga}, &stdout)
	require.NoError(t, err)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "position,shirt_no,frequency\nGoalkeeper,1,2\nCentre-Back,4,1\n", string(written))
	require.Contains(t, stdout.String(), "Goalkeeper")
	require.Contains(t, stdout.String(), "Centre-Back")
}

func TestRunAnalyzePositions(t *testing.T) {
	dir := t.TempDir()
	input := writeCSV(t, dir, "league.csv", "name,position,shirt_no\nA,Centre-Back,4\nB,Goalkeeper,1\nC,Centre-Back,5\nD,Centre-Back,4\n")
	out := filepath.Join(dir, "frequency.csv")

	opts := analyzeOptions{n: 2, out: out, quiet: true, positions: []string{"GK", "CB", "SS"}}
	require.NoError(t, runAnalyze(context.Background(), opts, []string{input}, &bytes.Buffer{}))

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t,
		"position,shirt_no_1,frequency_1,shirt_no_2,frequency_2\n"+
			"Goalkeeper,1,1,,\n"+
			"Centre-Back,4,2,5,1\n"+
			"Second Striker,,,,\n",
		string(written),
	)
}

func TestRunAnalyzeRepeatedPositions(t *testing.T) {
	dir := t.TempDir()
	input := writeCSV(t, dir, "league.csv", "name,position,shirt_no\nA,Goalkeeper,1\nB,Centre-Back,4\n")
	out := filepath.Join(dir, "frequency.csv")

	opts := analyzeOptions{n: 1, out: out, quiet: true, positions: []string{"GK", "GK", "CB", "Goalkeeper"}}
	require.NoError(t, runAnalyze(context.Background(), opts, []string{input}, &bytes.Buffer{}))

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "position,shirt_no,frequency\nGoalkeeper,1,1\nCentre-Back,4,1\n", string(written))
}

func TestRunAnalyzeInvalidInput(t *testing.T) {
	dir := t.TempDir()
	empty := writeCSV(t, dir, "empty.csv", "name,position,shirt_no\n")
	noPosition := writeCSV(t, dir, "no_position.csv", "name,position,shirt_no\nA,,7\n")

	opts := analyzeOptions{n: 1, quiet: true}
	err := runAnalyze(context.Background(), opts, []string{empty}, &bytes.Buffer{})
	require.True(t, errors.Is(err, frequency.ErrInvalidInput))

	err = runAnalyze(context.Background(), opts, []string{noPosition}, &bytes.Buffer{})
	require.True(t, errors.Is(err, frequency.ErrInvalidInput))

	err = runAnalyze(context.Background(), opts, nil, &bytes.Buffer{})
	require.ErrorContains(t, err, "no input")

	err = runAnalyze(context.Background(), analyzeOptions{n: 1, save: true}, []string{empty}, &bytes.Buffer{})
	require.Error(t, err)

	err = runAnalyze(context.Background(), opts, []string{filepath.Join(dir, "missing.csv")}, &bytes.Buffer{})
	require.ErrorContains(t, err, "could not open")
}

func TestRenderTable(t *testing.T) {
	result := frequency.AggregatedTable{
		{Position: "Goalkeeper", TopShirtNumbers: []frequency.ShirtCount{{Number: 1, Count: 20}}},
		{Position: "Left-Back", TopShirtNumbers: []frequency.ShirtCount{}},
	}

	var buf bytes.Buffer
	renderTable(&buf, result, 2)
	rendered := buf.String()
	require.Contains(t, rendered, "SHIRT 1")
	require.Contains(t, rendered, "FREQUENCY 2")
	require.Contains(t, rendered, "Left-Back")
	require.Contains(t, rendered, "20")
}

func TestWriteRecordsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Serie_A.csv")
	records := []db.PlayerRecord{{Name: "Maignan", Position: "Goalkeeper", ShirtNumber: db.Shirt(16), Team: "AC Milan"}}

	require.NoError(t, writeRecordsFile(path, records))
	read, err := readRecordsFiles([]string{path})
	require.NoError(t, err)
	require.Equal(t, records, read)
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "none.json5"), true, 2021, 6)
	require.NoError(t, err)
	require.True(t, cfg.Browser)
	require.Equal(t, 2021, cfg.Season)
	require.Equal(t, 6, cfg.Workers)
}
