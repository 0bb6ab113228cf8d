package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"energydash/internal/models"
	"energydash/internal/render"
	"energydash/internal/views"
)

var renderArgs struct {
	out     string
	minYear int
	maxYear int
	country string
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the dashboard to a static HTML page",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := load(cfg)
		if err != nil {
			return err
		}
		r := models.YearRange{Min: renderArgs.minYear, Max: renderArgs.maxYear}
		if r != models.FullRange() {
			if err := d.SetRange(r); err != nil {
				return err
			}
		}

		var tt *views.Tooltip
		if renderArgs.country != "" {
			if err := d.ClickCountryName(renderArgs.country); err != nil {
				return err
			}
			if code := d.Snapshot().Selection.Country; code != "" {
				tt, _ = d.MapTooltip(code)
			}
		}

		var w io.Writer = os.Stdout
		if renderArgs.out != "-" {
			f, err := os.Create(renderArgs.out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return render.Write(w, d.Snapshot(), tt)
	},
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderArgs.out, "out", "o", "-", "output file, - for stdout")
	f.IntVar(&renderArgs.minYear, "from", models.MinYear, "first year of the range")
	f.IntVar(&renderArgs.maxYear, "to", models.MaxYear, "last year of the range")
	f.StringVar(&renderArgs.country, "country", "", "country name to select")
}
