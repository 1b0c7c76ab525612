package choropleth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func square(x, y float64) *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, []float64{x, y, x + 1, y, x + 1, y + 1, x, y + 1, x, y}, []int{10})
}

func scenarioModel() *Model {
	stats := []StatRecord{
		{Key: 1, Name: "Alpha County", Subregion: "AL", Value: 10},
		{Key: 2, Name: "Beta County", Subregion: "AK", Value: 90},
	}
	geoms := []GeometryRecord{
		{Key: 1, Geometry: square(0, 0)},
		{Key: 2, Geometry: square(1, 0)},
		{Key: 3, Geometry: square(2, 0)},
	}
	return Build(stats, geoms, Options{LegendWidth: 250})
}

func TestRenderer_ColorFor(t *testing.T) {
	m := scenarioModel()

	c1, ok := m.Renderer.ColorFor(1)
	require.True(t, ok)
	c2, ok := m.Renderer.ColorFor(2)
	require.True(t, ok)
	assert.NotEqual(t, c1, c2)

	c3, ok := m.Renderer.ColorFor(3)
	assert.False(t, ok)
	assert.Equal(t, DefaultNoDataColor, c3)
}

func TestRenderer_Regions(t *testing.T) {
	m := scenarioModel()
	regions := m.Renderer.Regions()
	require.Len(t, regions, 3)

	assert.Equal(t, 1, regions[0].Key)
	assert.True(t, regions[0].HasData)
	require.NotNil(t, regions[0].Stat)
	assert.Equal(t, "Alpha County", regions[0].Stat.Name)

	assert.Equal(t, 3, regions[2].Key)
	assert.False(t, regions[2].HasData)
	assert.Nil(t, regions[2].Stat)
	assert.Equal(t, DefaultNoDataColor, regions[2].Fill)
}

func TestRenderer_CustomNoDataColor(t *testing.T) {
	r := NewRenderer(JoinedIndex{}, BuildScale(Extent{Min: 0, Max: 1}, Greens), nil, RendererOptions{NoDataColor: "#ff00ff"})
	c, ok := r.ColorFor(42)
	assert.False(t, ok)
	assert.Equal(t, Color("#ff00ff"), c)
}

func TestRenderer_SingleRecord(t *testing.T) {
	m := Build([]StatRecord{{Key: 1, Value: 50}}, nil, Options{LegendWidth: 250})
	assert.Equal(t, Extent{Min: 50, Max: 50}, m.Extent)
	assert.True(t, m.Scale.Degenerate())
	require.Len(t, m.Legend.Buckets, 1)
	assert.Equal(t, 250.0, m.Legend.Buckets[0].Width)
}

func TestRenderer_Content(t *testing.T) {
	m := scenarioModel()
	c, ok := m.Renderer.Content(1)
	require.True(t, ok)
	assert.Equal(t, "Alpha County, AL: 10%", c.Text)

	_, ok = m.Renderer.Content(3)
	assert.False(t, ok)
}

func TestTooltip_HoverSequence(t *testing.T) {
	m := scenarioModel()
	r := m.Renderer

	var tip Tooltip
	assert.Equal(t, Hidden, tip.State)

	tr := r.Hover(tip, 1, 100, 200)
	assert.Equal(t, TransitionShow, tr.Kind)
	assert.Equal(t, Hidden, tr.From)
	assert.Equal(t, Shown, tr.To)
	require.NotNil(t, tr.Tooltip.Content)
	assert.Equal(t, "Alpha County", tr.Tooltip.Content.Name)
	assert.Equal(t, 100.0, tr.Tooltip.X)
	assert.Equal(t, 200.0, tr.Tooltip.Y)
	tip = tr.Tooltip

	// Moving straight to another region updates in place with no Hidden step.
	tr = r.Hover(tip, 2, 140, 210)
	assert.Equal(t, TransitionUpdate, tr.Kind)
	assert.Equal(t, Shown, tr.From)
	assert.Equal(t, Shown, tr.To)
	assert.Equal(t, 2, tr.Tooltip.Key)
	assert.Equal(t, "Beta County, AK: 90%", tr.Tooltip.Content.Text)
	tip = tr.Tooltip

	tr = r.Unhover(tip)
	assert.Equal(t, TransitionHide, tr.Kind)
	assert.Equal(t, Hidden, tr.To)
	assert.Nil(t, tr.Tooltip.Content)

	tr = r.Unhover(tr.Tooltip)
	assert.Equal(t, TransitionNone, tr.Kind)
}

func TestTooltip_HoverNoData(t *testing.T) {
	r := scenarioModel().Renderer

	tr := r.Hover(Tooltip{}, 3, 1, 1)
	assert.True(t, tr.NoData)
	assert.Equal(t, TransitionNone, tr.Kind)
	assert.Equal(t, Hidden, tr.To)

	shown := r.Hover(Tooltip{}, 1, 1, 1).Tooltip
	tr = r.Hover(shown, 3, 2, 2)
	assert.True(t, tr.NoData)
	assert.Equal(t, TransitionHide, tr.Kind)
}

func TestTooltipState_MarshalText(t *testing.T) {
	b, err := Shown.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "shown", string(b))
	assert.Equal(t, "hidden", Hidden.String())
}
