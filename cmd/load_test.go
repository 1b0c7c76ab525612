package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/choropleth/internal/config"
	"github.com/sells-group/choropleth/internal/dataset"
	"github.com/sells-group/choropleth/internal/fetcher"
	"github.com/sells-group/choropleth/internal/geopath"
)

const testStats = `[
  {"fips": 1001, "state": "AL", "area_name": "Autauga County", "bachelorsOrHigher": 10},
  {"fips": 1003, "state": "AL", "area_name": "Baldwin County", "bachelorsOrHigher": 90},
  {"fips": 9999, "state": "ZZ", "area_name": "Nowhere", "bachelorsOrHigher": 50}
]`

const testTopo = `{
  "type": "Topology",
  "objects": {
    "counties": {"type": "GeometryCollection", "geometries": [
      {"type": "Polygon", "arcs": [[0, 1]], "id": 1001},
      {"type": "Polygon", "arcs": [[2, -1]], "id": 1003},
      {"type": "Polygon", "arcs": [[3]], "id": 1005}
    ]},
    "states": {"type": "GeometryCollection", "geometries": [
      {"type": "Polygon", "arcs": [[0, 1]], "id": 1},
      {"type": "Polygon", "arcs": [[2, -1]], "id": 2}
    ]}
  },
  "arcs": [
    [[100, 0], [100, 100]],
    [[100, 100], [0, 100], [0, 0], [100, 0]],
    [[100, 0], [200, 0], [200, 100], [100, 100]],
    [[300, 0], [400, 0], [400, 100], [300, 0]]
  ]
}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	stats := filepath.Join(dir, "for_user_education.json")
	topo := filepath.Join(dir, "counties.json")
	require.NoError(t, os.WriteFile(stats, []byte(testStats), 0o644))
	require.NoError(t, os.WriteFile(topo, []byte(testTopo), 0o644))

	c := &config.Config{}
	c.Data.StatsURL = stats
	c.Data.GeometryURL = topo
	c.Data.Columns = dataset.DefaultColumns()
	c.Data.RegionsObject = "counties"
	c.Data.SeparatorsObject = "states"
	c.Map.Width, c.Map.Height = 960, 600
	c.Map.NoDataColor = "#cccccc"
	c.Map.Title = "United States Educational Attainment"
	c.Legend.Width, c.Legend.Height, c.Legend.X, c.Legend.Y, c.Legend.TickSize = 250, 10, 600, 30, 6
	c.Server.Port = 8080
	c.Server.MaxSessions = 10
	c.Server.SessionTTLMins = 1
	return c
}

func TestLoadModel(t *testing.T) {
	c := testConfig(t)
	l, err := loadModel(context.Background(), c, fetcher.FileFetcher{})
	require.NoError(t, err)

	assert.InDelta(t, 10.0, l.Model.Extent.Min, 0)
	assert.InDelta(t, 90.0, l.Model.Extent.Max, 0)
	assert.Equal(t, []int{1005}, l.Missing)
	assert.Equal(t, []int{9999}, l.Unmatched)
	assert.IsType(t, geopath.Identity{}, l.Render.Projection)
	assert.NotNil(t, l.Model.Renderer.Overlay())
	assert.InDelta(t, 600.0, l.Render.LegendX, 0)
}

func TestLoadModel_CustomPalette(t *testing.T) {
	c := testConfig(t)
	c.Map.Palette = []string{"#000000", "#ffffff"}
	l, err := loadModel(context.Background(), c, fetcher.FileFetcher{})
	require.NoError(t, err)
	assert.Len(t, l.Model.Scale.Cuts(), 2)
	assert.Len(t, l.Model.Legend.Buckets, 2)
}

func TestLoadModel_Errors(t *testing.T) {
	c := testConfig(t)
	c.Data.StatsURL = filepath.Join(t.TempDir(), "missing.json")
	_, err := loadModel(context.Background(), c, fetcher.FileFetcher{})
	require.Error(t, err)

	c = testConfig(t)
	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"type":"Topology","objects":{"counties":{"type":"GeometryCollection","geometries":[]}},"arcs":[]}`), 0o644))
	c.Data.GeometryURL = empty
	c.Data.SeparatorsObject = ""
	_, err = loadModel(context.Background(), c, fetcher.FileFetcher{})
	require.ErrorIs(t, err, errNoRegions)
}

func TestWriteMap(t *testing.T) {
	c := testConfig(t)
	cfg = c
	l, err := loadModel(context.Background(), c, fetcher.FileFetcher{})
	require.NoError(t, err)

	var svgOut bytes.Buffer
	require.NoError(t, writeMap(&svgOut, l, "svg"))
	assert.True(t, strings.HasPrefix(svgOut.String(), "<svg"))
	assert.Contains(t, svgOut.String(), `class="state"`)
	assert.Contains(t, svgOut.String(), `class="county no-data"`)

	var htmlOut bytes.Buffer
	require.NoError(t, writeMap(&htmlOut, l, "html"))
	assert.Contains(t, htmlOut.String(), "<!DOCTYPE html>")
	assert.Contains(t, htmlOut.String(), `data-api=""`)
	assert.Contains(t, htmlOut.String(), "United States Educational Attainment")
}

func TestOutputFormat(t *testing.T) {
	assert.Equal(t, "html", outputFormat("map.HTML"))
	assert.Equal(t, "html", outputFormat("out/index.htm"))
	assert.Equal(t, "svg", outputFormat("map.svg"))
	assert.Equal(t, "svg", outputFormat("-"))
}

func TestWriteInspect(t *testing.T) {
	c := testConfig(t)
	l, err := loadModel(context.Background(), c, fetcher.FileFetcher{})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writeInspect(&out, l))
	s := out.String()
	assert.Contains(t, s, "10.0 .. 90.0")
	assert.Contains(t, s, "-inf")
	assert.Contains(t, s, "80.0")
	assert.Regexp(t, `regions without data\s+1\s+1005`, s)
	assert.Regexp(t, `records without region\s+1\s+9999`, s)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "", keys(nil))
	assert.Equal(t, "1 2 3", keys([]int{1, 2, 3}))
	long := make([]int, 12)
	assert.True(t, strings.HasSuffix(keys(long), " ..."))
}
