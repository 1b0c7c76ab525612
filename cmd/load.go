package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth/internal/choropleth"
	"github.com/sells-group/choropleth/internal/config"
	"github.com/sells-group/choropleth/internal/dataset"
	"github.com/sells-group/choropleth/internal/fetcher"
	"github.com/sells-group/choropleth/internal/geopath"
	"github.com/sells-group/choropleth/internal/render"
)

// loaded is a built model plus what the renderer needs to draw it.
type loaded struct {
	Model     *choropleth.Model
	Data      *dataset.Data
	Render    render.Options
	Missing   []int
	Unmatched []int
}

// loadModel fetches both sources and runs the pipeline once.
func loadModel(ctx context.Context, c *config.Config, f fetcher.Fetcher) (*loaded, error) {
	if f == nil {
		httpOpts, ftpOpts := c.FetchOptions()
		f = fetcher.NewRouter(httpOpts, ftpOpts)
	}

	data, err := dataset.Load(ctx, c.Sources(), f)
	if err != nil {
		return nil, err
	}

	palette := make(choropleth.Palette, 0, len(c.Map.Palette))
	for _, p := range c.Map.Palette {
		palette = append(palette, choropleth.Color(p))
	}

	m := choropleth.Build(data.Stats, data.Geometries, choropleth.Options{
		Palette:     palette,
		NoDataColor: choropleth.Color(c.Map.NoDataColor),
		LegendWidth: float64(c.Legend.Width),
		Overlay:     data.Overlay,
	})
	missing, unmatched := dataset.Report(m.Index, data.Geometries)

	if len(data.Geometries) == 0 {
		return nil, errNoRegions
	}

	opts := renderOptions(c)
	if !data.Projected {
		opts.Projection = fitProjection(data.Geometries, c)
	}

	if m.Extent.Degenerate() {
		zap.L().Warn("choropleth: degenerate value range, every region shares one colour",
			zap.Float64("min", m.Extent.Min),
			zap.Float64("max", m.Extent.Max),
		)
	}

	return &loaded{Model: m, Data: data, Render: opts, Missing: missing, Unmatched: unmatched}, nil
}

func renderOptions(c *config.Config) render.Options {
	opts := render.DefaultOptions()
	opts.Width = c.Map.Width
	opts.Height = c.Map.Height
	opts.LegendX = float64(c.Legend.X)
	opts.LegendY = float64(c.Legend.Y)
	opts.LegendHeight = float64(c.Legend.Height)
	opts.TickSize = float64(c.Legend.TickSize)
	if c.Map.OverlayStroke != "" {
		opts.OverlayStroke = c.Map.OverlayStroke
	}
	return opts
}

// fitProjection scales lon/lat geometry onto the canvas.
func fitProjection(geoms []choropleth.GeometryRecord, c *config.Config) geopath.Projection {
	gs := make([]geom.T, 0, len(geoms))
	for _, g := range geoms {
		gs = append(gs, g.Geometry)
	}
	return geopath.FitExtent(geopath.Bounds(gs...), float64(c.Map.Width), float64(c.Map.Height), 10)
}

var errNoRegions = eris.New("choropleth: geometry source has no regions")
