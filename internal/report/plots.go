package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/splitstat/splitstat/internal/dataset"
)

var (
	controlColor = color.NRGBA{R: 0x4A, G: 0x90, B: 0xD9, A: 0xFF}
	variantColor = color.NRGBA{R: 0xE8, G: 0x53, B: 0x3A, A: 0xFF}

	controlFill = color.NRGBA{R: 0x4A, G: 0x90, B: 0xD9, A: 0x80}
	variantFill = color.NRGBA{R: 0xE8, G: 0x53, B: 0x3A, A: 0x80}
)

// WritePlots renders the comparison charts as PNGs under dir/plots and
// returns the generated filenames.
func WritePlots(records []dataset.Record, dir string) ([]string, error) {
	plotsDir := filepath.Join(dir, PlotsDirName)
	if err := os.MkdirAll(plotsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create plots dir: %w", err)
	}

	control, variant := dataset.Summarize(records)

	type plotFn struct {
		name string
		fn   func(path string) error
	}
	plots := []plotFn{
		{"conversion_rate_bar.png", func(path string) error {
			return conversionBars(control.ConversionRate, variant.ConversionRate, path)
		}},
		{"time_spent_distribution.png", func(path string) error {
			return histogramOverlay("Time Spent Distribution: Control vs Variant", "Time Spent (minutes)",
				control.TimeSpent, variant.TimeSpent, 50, path)
		}},
		{"clicks_distribution.png", func(path string) error {
			return histogramOverlay("Clicks Distribution: Control vs Variant", "Number of Clicks",
				control.Clicks, variant.Clicks, 20, path)
		}},
	}

	names := make([]string, 0, len(plots))
	for _, pl := range plots {
		if err := pl.fn(filepath.Join(plotsDir, pl.name)); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", pl.name, err)
		}
		names = append(names, pl.name)
	}

	return names, nil
}

func conversionBars(rateControl, rateVariant float64, path string) error {
	p := plot.New()
	p.Title.Text = "Conversion Rate by Group"
	p.Y.Label.Text = "Conversion Rate (%)"

	controlBar, err := plotter.NewBarChart(plotter.Values{rateControl * 100}, vg.Points(40))
	if err != nil {
		return err
	}
	controlBar.Color = controlColor
	controlBar.Offset = -vg.Points(22)

	variantBar, err := plotter.NewBarChart(plotter.Values{rateVariant * 100}, vg.Points(40))
	if err != nil {
		return err
	}
	variantBar.Color = variantColor
	variantBar.Offset = vg.Points(22)

	p.Add(controlBar, variantBar)
	p.Legend.Add("Control", controlBar)
	p.Legend.Add("Variant", variantBar)
	p.Legend.Top = true
	p.NominalX("conversion rate")

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

func histogramOverlay(title, xLabel string, control, variant []float64, bins int, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "Density"

	controlHist, err := plotter.NewHist(plotter.Values(control), bins)
	if err != nil {
		return err
	}
	controlHist.Normalize(1)
	controlHist.FillColor = controlFill
	controlHist.LineStyle.Color = controlColor

	variantHist, err := plotter.NewHist(plotter.Values(variant), bins)
	if err != nil {
		return err
	}
	variantHist.Normalize(1)
	variantHist.FillColor = variantFill
	variantHist.LineStyle.Color = variantColor

	p.Add(controlHist, variantHist)
	p.Legend.Add("Control", controlHist)
	p.Legend.Add("Variant", variantHist)
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 4.5*vg.Inch, path)
}
