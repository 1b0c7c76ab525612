// Package dataset loads the statistic table and the region geometry a choropleth is
// drawn from. Both sources are fetched concurrently and the load fails as a whole if
// either one fails.
package dataset

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/choropleth/internal/choropleth"
	"github.com/sells-group/choropleth/internal/fetcher"
)

// Stat formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Geometry formats.
const (
	FormatTopoJSON  = "topojson"
	FormatShapefile = "shapefile"
)

// Columns names the header cells of a tabular statistic source.
type Columns struct {
	Key       string `mapstructure:"key"`
	Name      string `mapstructure:"name"`
	Subregion string `mapstructure:"subregion"`
	Value     string `mapstructure:"value"`
}

// DefaultColumns matches the field names of the JSON statistic records.
func DefaultColumns() Columns {
	return Columns{Key: "fips", Name: "area_name", Subregion: "state", Value: "bachelorsOrHigher"}
}

// StatsSource describes where the statistic table lives and how to parse it.
type StatsSource struct {
	URL      string
	Format   string
	Columns  Columns
	Charset  string
	SkipRows int
	Sheet    string
}

// GeometrySource describes where region geometry lives.
type GeometrySource struct {
	URL    string
	Format string
	// RegionsObject and SeparatorsObject name TopoJSON objects. An empty
	// SeparatorsObject disables the overlay.
	RegionsObject    string
	SeparatorsObject string
	// KeyField is the shapefile attribute holding the region key.
	KeyField string
}

// Sources bundles both inputs.
type Sources struct {
	Stats    StatsSource
	Geometry GeometrySource
}

// Data is everything the pipeline needs once loading resolves.
type Data struct {
	Stats      []choropleth.StatRecord
	Geometries []choropleth.GeometryRecord
	Overlay    geom.T
	// Projected reports whether coordinates are already in screen space. TopoJSON
	// sources are pre-projected; shapefiles are lon/lat.
	Projected bool
}

// Load fetches the statistic and geometry sources concurrently. Rendering must not
// start on a partial result, so any failure cancels the other fetch and is returned.
func Load(ctx context.Context, src Sources, f fetcher.Fetcher) (*Data, error) {
	g, gctx := errgroup.WithContext(ctx)

	var stats []choropleth.StatRecord
	g.Go(func() error {
		var err error
		stats, err = LoadStats(gctx, src.Stats, f)
		return err
	})

	var geo *Geometry
	g.Go(func() error {
		var err error
		geo, err = LoadGeometry(gctx, src.Geometry, f)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "dataset: load")
	}

	outside := 0
	for _, s := range stats {
		if s.Value < 0 || s.Value > 100 {
			outside++
		}
	}
	if outside > 0 {
		zap.L().Warn("dataset: values outside [0,100], extent will widen past the seed",
			zap.Int("count", outside),
		)
	}

	zap.L().Info("dataset: loaded",
		zap.Int("stats", len(stats)),
		zap.Int("regions", len(geo.Regions)),
		zap.Bool("overlay", geo.Overlay != nil),
	)

	return &Data{
		Stats:      stats,
		Geometries: geo.Regions,
		Overlay:    geo.Overlay,
		Projected:  geo.Projected,
	}, nil
}

// Report logs join gaps between the two sources. Gaps are a rendering state, never an error.
func Report(index choropleth.JoinedIndex, geoms []choropleth.GeometryRecord) (missing, unmatched []int) {
	missing = index.Missing(geoms)
	unmatched = index.Unmatched(geoms)
	if len(missing) > 0 {
		zap.L().Warn("dataset: regions without a statistic", zap.Int("count", len(missing)), zap.Ints("sample", sample(missing)))
	}
	if len(unmatched) > 0 {
		zap.L().Warn("dataset: statistics without a region", zap.Int("count", len(unmatched)), zap.Ints("sample", sample(unmatched)))
	}
	return missing, unmatched
}

func sample(keys []int) []int {
	if len(keys) > 10 {
		return keys[:10]
	}
	return keys
}
