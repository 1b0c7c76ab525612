package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth/internal/choropleth"
	"github.com/sells-group/choropleth/internal/fetcher"
	"github.com/sells-group/choropleth/internal/topology"
)

// Default TopoJSON object names and shapefile key attribute.
const (
	DefaultRegionsObject    = "counties"
	DefaultSeparatorsObject = "states"
	DefaultKeyField         = "GEOID"
)

// Geometry is the decoded region geometry and optional separator overlay.
type Geometry struct {
	Regions   []choropleth.GeometryRecord
	Overlay   geom.T
	Projected bool
}

// LoadGeometry fetches and decodes the geometry source.
func LoadGeometry(ctx context.Context, src GeometrySource, f fetcher.Fetcher) (*Geometry, error) {
	if src.URL == "" {
		return nil, eris.New("dataset: geometry url is empty")
	}
	format := src.Format
	if format == "" {
		format = formatFromURL(src.URL, FormatTopoJSON)
	}

	switch format {
	case FormatTopoJSON:
		body, err := f.Download(ctx, src.URL)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: fetch topology")
		}
		defer body.Close() //nolint:errcheck

		topo, err := topology.Decode(body)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: decode topology")
		}
		return FromTopology(topo, src.RegionsObject, src.SeparatorsObject)
	case FormatShapefile:
		return loadShapefile(ctx, src, f)
	default:
		return nil, eris.Errorf("dataset: unknown geometry format %q", format)
	}
}

// FromTopology extracts region features and the separator mesh (arcs shared by two
// distinct separator geometries).
func FromTopology(topo *topology.Topology, regions, separators string) (*Geometry, error) {
	if regions == "" {
		regions = DefaultRegionsObject
	}
	features, err := topo.Feature(regions)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: region features")
	}

	out := &Geometry{Projected: true, Regions: make([]choropleth.GeometryRecord, 0, len(features))}
	noID := 0
	for _, ft := range features {
		if !ft.HasID {
			noID++
			continue
		}
		out.Regions = append(out.Regions, choropleth.GeometryRecord{Key: ft.ID, Geometry: ft.Geometry})
	}
	if noID > 0 {
		zap.L().Warn("dataset: skipped regions without an id", zap.Int("count", noID))
	}

	if separators != "" {
		mesh, err := topo.Mesh(separators, topology.DistinctGeometries)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: separator mesh")
		}
		out.Overlay = mesh
	}
	return out, nil
}

func loadShapefile(ctx context.Context, src GeometrySource, f fetcher.Fetcher) (*Geometry, error) {
	dir, err := os.MkdirTemp("", "choropleth-shp-*")
	if err != nil {
		return nil, eris.Wrap(err, "dataset: create temp dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	shpPath := filepath.Join(dir, "regions.shp")
	if strings.EqualFold(filepath.Ext(strings.SplitN(src.URL, "?", 2)[0]), ".zip") {
		zipPath := filepath.Join(dir, "regions.zip")
		if _, err := fetcher.DownloadToFile(ctx, f, src.URL, zipPath); err != nil {
			return nil, eris.Wrap(err, "dataset: fetch shapefile")
		}
		files, err := fetcher.ExtractZIP(zipPath, dir, ".shp", ".shx", ".dbf")
		if err != nil {
			return nil, eris.Wrap(err, "dataset: extract shapefile")
		}
		p, ok := fetcher.FindExt(files, ".shp")
		if !ok {
			return nil, eris.New("dataset: archive has no .shp file")
		}
		shpPath = p
	} else {
		// A bare .shp needs its .shx and .dbf siblings next to it.
		base := strings.TrimSuffix(src.URL, filepath.Ext(src.URL))
		for _, ext := range []string{".shp", ".shx", ".dbf"} {
			if _, err := fetcher.DownloadToFile(ctx, f, base+ext, filepath.Join(dir, "regions"+ext)); err != nil {
				return nil, eris.Wrapf(err, "dataset: fetch shapefile %s", ext)
			}
		}
	}

	regions, err := ReadShapefile(shpPath, src.KeyField)
	if err != nil {
		return nil, err
	}
	return &Geometry{Regions: regions}, nil
}

// ReadShapefile reads polygon regions keyed by the numeric keyField attribute
// (e.g. GEOID "01001" becomes 1001).
func ReadShapefile(shpPath, keyField string) ([]choropleth.GeometryRecord, error) {
	if keyField == "" {
		keyField = DefaultKeyField
	}
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	keyIdx := -1
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), keyField) {
			keyIdx = i
			break
		}
	}
	if keyIdx < 0 {
		return nil, eris.Errorf("dataset: shapefile has no %s field", keyField)
	}

	var regions []choropleth.GeometryRecord
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		raw := strings.TrimSpace(strings.TrimRight(reader.Attribute(keyIdx), "\x00"))
		key, err := strconv.Atoi(raw)
		if err != nil {
			skipped++
			continue
		}
		g := shapeToGeom(shape)
		if g == nil {
			skipped++
			continue
		}
		regions = append(regions, choropleth.GeometryRecord{Key: key, Geometry: g})
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrap(err, "dataset: read shapefile")
	}

	if skipped > 0 {
		zap.L().Debug("dataset: skipped shapefile records", zap.Int("skipped", skipped))
	}
	return regions, nil
}
