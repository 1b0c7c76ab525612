package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the value range, colour thresholds, legend and join gaps",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("inspect"); err != nil {
			return err
		}
		l, err := loadModel(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		return writeInspect(cmd.OutOrStdout(), l)
	},
}

func writeInspect(out io.Writer, l *loaded) error {
	m := l.Model
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "records\t%d\n", len(m.Index))
	fmt.Fprintf(w, "regions\t%d\n", len(l.Data.Geometries))
	fmt.Fprintf(w, "extent\t%.1f .. %.1f\n", m.Extent.Min, m.Extent.Max)
	fmt.Fprintf(w, "degenerate\t%t\n", m.Scale.Degenerate())
	fmt.Fprintln(w)

	fmt.Fprintln(w, "from\tcolour")
	for _, st := range m.Scale.Steps() {
		fmt.Fprintf(w, "%s\t%s\n", lowerBound(st.LowerBound), st.Color)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "legend x\twidth\tcolour")
	for _, b := range m.Legend.Buckets {
		fmt.Fprintf(w, "%.1f\t%.1f\t%s\n", b.X, b.Width, b.Color)
	}
	for _, t := range m.Legend.Ticks {
		fmt.Fprintf(w, "tick\t%.1f\t%s\n", t.X, t.Label)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "regions without data\t%d\t%s\n", len(l.Missing), keys(l.Missing))
	fmt.Fprintf(w, "records without region\t%d\t%s\n", len(l.Unmatched), keys(l.Unmatched))
	return w.Flush()
}

func lowerBound(v *float64) string {
	if v == nil {
		return "-inf"
	}
	return fmt.Sprintf("%.1f", *v)
}

func keys(ks []int) string {
	const limit = 10
	s := ""
	for i, k := range ks {
		if i == limit {
			return s + " ..."
		}
		if i > 0 {
			s += " "
		}
		s += fmt.Sprint(k)
	}
	return s
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

