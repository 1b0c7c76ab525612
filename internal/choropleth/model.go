package choropleth

import "github.com/twpayne/go-geom"

// Options configures Build.
type Options struct {
	Palette     Palette
	NoDataColor Color
	LegendWidth float64
	Overlay     geom.T
}

// Model is the joined, scaled dataset for one load. Every field is read-only after Build.
type Model struct {
	Index    JoinedIndex
	Extent   Extent
	Scale    ColorScale
	Legend   Legend
	Renderer *Renderer
}

// Build runs the full pipeline: join, scale, renderer and legend, all sharing one scale.
func Build(stats []StatRecord, geoms []GeometryRecord, opts Options) *Model {
	if len(opts.Palette) == 0 {
		opts.Palette = Greens
	}
	idx, ext := Join(stats)
	scale := BuildScale(ext, opts.Palette)
	return &Model{
		Index:  idx,
		Extent: ext,
		Scale:  scale,
		Legend: BuildLegend(scale, ext, opts.LegendWidth),
		Renderer: NewRenderer(idx, scale, geoms, RendererOptions{
			NoDataColor: opts.NoDataColor,
			Overlay:     opts.Overlay,
		}),
	}
}
