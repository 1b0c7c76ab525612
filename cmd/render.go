package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth/internal/render"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the map to an .svg or static .html file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("render"); err != nil {
			return err
		}

		l, err := loadModel(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}

		var out io.Writer = cmd.OutOrStdout()
		if renderOut != "" && renderOut != "-" {
			f, err := os.Create(renderOut)
			if err != nil {
				return eris.Wrap(err, "render: create output")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		if err := writeMap(out, l, outputFormat(renderOut)); err != nil {
			return err
		}

		zap.L().Info("render complete",
			zap.String("out", renderOut),
			zap.Int("regions", len(l.Data.Geometries)),
			zap.Int("missing", len(l.Missing)),
		)
		return nil
	},
}

// outputFormat picks html for .html/.htm paths and svg otherwise.
func outputFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "html"
	default:
		return "svg"
	}
}

func writeMap(w io.Writer, l *loaded, format string) error {
	doc := render.Document(l.Model, l.Render)
	if format == "html" {
		return render.WritePage(w, render.PageData{
			Title:       cfg.Map.Title,
			Description: cfg.Map.Description,
			SVG:         doc,
		})
	}
	if _, err := doc.WriteTo(w); err != nil {
		return eris.Wrap(err, "render: write svg")
	}
	return nil
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "map.svg", "output path (.svg or .html, - for stdout)")
	rootCmd.AddCommand(renderCmd)
}
