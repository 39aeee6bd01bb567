package portfolio

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// InflationSource fetches an annual inflation rate series from INSEE (the
// French national statistics institute): download a zipped CSV time
// series, unzip in memory, and parse the last column. The engine itself
// only ever consumes the single resolved Config.Inflation percentage, not
// this fetcher directly; "rebalance -fetch-live" (cmd/rebalance.go) calls
// LatestAnnualRate once per run, when Config.InflationSeriesID is set, and
// overrides Config.Inflation with the result before constructing the
// engine.
type InflationSource struct {
	// SeriesID is the INSEE "idbank" for a CPI series, e.g. "001763852"
	// for the French all-items consumer price index.
	SeriesID string
}

// LatestAnnualRate downloads the series and returns the most recent
// year-over-year percentage change as a Percent.
func (s InflationSource) LatestAnnualRate() (Percent, error) {
	url := fmt.Sprintf(
		"https://bdm.insee.fr/series/%s/csv?lang=fr&ordre=antechronologique&transposition=donneescolonne&revision=sansrevisions",
		s.SeriesID,
	)
	resp, err := http.Get(url)
	if err != nil {
		return 0, fmt.Errorf("failed to download inflation series %s: %w", s.SeriesID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("failed to download inflation series %s: received status %s", s.SeriesID, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read inflation response body: %w", err)
	}

	rate, err := parseInseeCSVRate(body)
	if err != nil {
		return 0, err
	}
	return Percent(rate), nil
}

// parseInseeCSVRate unzips the INSEE response in memory, locates the
// single CSV file inside it, and parses the most recent two data rows
// into a year-over-year percentage change.
func parseInseeCSVRate(body []byte) (float64, error) {
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return 0, fmt.Errorf("failed to open zip archive from INSEE response: %w", err)
	}

	var csvFile *zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			csvFile = f
			break
		}
	}
	if csvFile == nil {
		return 0, fmt.Errorf("no csv file found in INSEE zip archive")
	}

	rc, err := csvFile.Open()
	if err != nil {
		return 0, fmt.Errorf("failed to open csv entry in INSEE zip archive: %w", err)
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.Comma = ';'
	records, err := r.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to parse INSEE csv: %w", err)
	}

	// Data rows are antichronological (newest first); the value column
	// is the last column of each row. Skip header rows that do not parse.
	var values []float64
	for _, row := range records {
		if len(row) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(row[len(row)-1], ",", "."), 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	if len(values) < 2 {
		return 0, fmt.Errorf("INSEE series did not contain enough rows to compute a rate")
	}
	latest, prior := values[0], values[1]
	if prior == 0 {
		return 0, fmt.Errorf("INSEE series prior value is zero, cannot compute rate")
	}
	return (latest - prior) / prior * 100, nil
}
