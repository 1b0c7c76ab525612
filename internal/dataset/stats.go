package dataset

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth/internal/choropleth"
	"github.com/sells-group/choropleth/internal/fetcher"
)

// LoadStats fetches and parses the statistic table.
func LoadStats(ctx context.Context, src StatsSource, f fetcher.Fetcher) ([]choropleth.StatRecord, error) {
	if src.URL == "" {
		return nil, eris.New("dataset: stats url is empty")
	}
	body, err := f.Download(ctx, src.URL)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: fetch stats")
	}
	defer body.Close() //nolint:errcheck

	format := src.Format
	if format == "" {
		format = formatFromURL(src.URL, FormatJSON)
	}

	var table *fetcher.Table
	switch format {
	case FormatJSON:
		stats, err := fetcher.ReadJSONArray[choropleth.StatRecord](ctx, body)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: decode stats")
		}
		return stats, nil
	case FormatCSV:
		table, err = fetcher.ReadCSVTable(ctx, body, fetcher.CSVOptions{
			Charset:    src.Charset,
			SkipRows:   src.SkipRows,
			LazyQuotes: true,
			TrimSpace:  true,
		})
	case FormatXLSX:
		table, err = fetcher.ReadXLSXTable(body, fetcher.XLSXOptions{
			SheetName: src.Sheet,
			SkipRows:  src.SkipRows,
		})
	default:
		return nil, eris.Errorf("dataset: unknown stats format %q", format)
	}
	if err != nil {
		return nil, eris.Wrap(err, "dataset: decode stats")
	}
	return StatsFromTable(table, src.Columns)
}

// StatsFromTable maps header-named columns to statistic records. Rows with a blank
// key or value are skipped; rows with unparseable numbers are an error.
func StatsFromTable(t *fetcher.Table, cols Columns) ([]choropleth.StatRecord, error) {
	cols = withDefaults(cols)
	idx, err := t.Cols(cols.Key, cols.Value)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: map stat columns")
	}
	keyIdx, valIdx := idx[0], idx[1]
	nameIdx, subIdx := t.Col(cols.Name), t.Col(cols.Subregion)

	stats := make([]choropleth.StatRecord, 0, len(t.Rows))
	skipped := 0
	for i, row := range t.Rows {
		rawKey, rawVal := fetcher.Cell(row, keyIdx), fetcher.Cell(row, valIdx)
		if rawKey == "" || rawVal == "" {
			skipped++
			continue
		}
		key, err := strconv.Atoi(rawKey)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: row %d: parse key %q", i+1, rawKey)
		}
		val, err := strconv.ParseFloat(strings.TrimSuffix(rawVal, "%"), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: row %d: parse value %q", i+1, rawVal)
		}
		stats = append(stats, choropleth.StatRecord{
			Key:       key,
			Name:      fetcher.Cell(row, nameIdx),
			Subregion: fetcher.Cell(row, subIdx),
			Value:     val,
		})
	}

	if skipped > 0 {
		zap.L().Debug("dataset: skipped blank stat rows", zap.Int("skipped", skipped))
	}
	return stats, nil
}

func withDefaults(c Columns) Columns {
	d := DefaultColumns()
	if c.Key == "" {
		c.Key = d.Key
	}
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.Subregion == "" {
		c.Subregion = d.Subregion
	}
	if c.Value == "" {
		c.Value = d.Value
	}
	return c
}

// formatFromURL guesses a format from the location's extension.
func formatFromURL(location, fallback string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	lower := strings.ToLower(location)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return FormatCSV
	case strings.HasSuffix(lower, ".xlsx"):
		return FormatXLSX
	case strings.HasSuffix(lower, ".zip"), strings.HasSuffix(lower, ".shp"):
		return FormatShapefile
	case strings.HasSuffix(lower, ".topojson"):
		return FormatTopoJSON
	}
	return fallback
}
