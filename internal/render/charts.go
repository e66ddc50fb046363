package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"ecommerce-dashboard/internal/models"
)

const (
	ChartReviewHighest   = "review-highest"
	ChartReviewLowest    = "review-lowest"
	ChartSalesByCategory = "sales-by-category"

	barWidth = 18
)

var ChartNames = []string{ChartReviewHighest, ChartReviewLowest, ChartSalesByCategory}

var ErrUnknownChart = errors.New("unknown chart")

var (
	reviewColor = color.RGBA{R: 0x2c, G: 0x6f, B: 0xb0, A: 0xff}
	salesColor  = color.RGBA{R: 0x2a, G: 0x7b, B: 0x8e, A: 0xff}
)

type Bar struct {
	Label string
	Value float64
}

// ChartSpec describes one horizontal bar chart. Bars are listed in display
// order, top bar first.
type ChartSpec struct {
	Title  string
	XLabel string
	Bars   []Bar
	Color  color.Color
	Width  vg.Length
	Height vg.Length
}

// ChartFor builds the named chart from a dashboard.
func ChartFor(name string, d *models.Dashboard) (ChartSpec, error) {
	switch name {
	case ChartReviewHighest:
		return ChartSpec{
			Title:  "Top 10 Categories with Highest Average Review Scores",
			XLabel: "Average Review Score",
			Bars:   scoreBars(d.Reviews.Highest),
			Color:  reviewColor,
		}, nil
	case ChartReviewLowest:
		return ChartSpec{
			Title:  "Top 10 Categories with Lowest Average Review Scores",
			XLabel: "Average Review Score",
			Bars:   scoreBars(d.Reviews.Lowest),
			Color:  reviewColor,
		}, nil
	case ChartSalesByCategory:
		bars := make([]Bar, len(d.Sales))
		for i, s := range d.Sales {
			bars[i] = Bar{Label: s.Category, Value: float64(s.Orders)}
		}
		return ChartSpec{
			Title: "Sales Trends by Product Category",
			Bars:  bars,
			Color: salesColor,
			Width: 10 * vg.Inch,
		}, nil
	default:
		return ChartSpec{}, fmt.Errorf("%w %q", ErrUnknownChart, name)
	}
}

func scoreBars(scores []models.CategoryScore) []Bar {
	bars := make([]Bar, len(scores))
	for i, s := range scores {
		bars[i] = Bar{Label: s.Category, Value: s.MeanScore}
	}
	return bars
}

// BarChart encodes the chart as a PNG. An empty chart still produces a valid
// image titled "No data".
func BarChart(w io.Writer, spec ChartSpec) error {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel

	if len(spec.Bars) == 0 {
		p.Title.Text = spec.Title + " (No data)"
		p.X.Min, p.X.Max = 0, 1
		p.Y.Min, p.Y.Max = 0, 1
	} else {
		// gonum stacks horizontal bars bottom-up, so the first bar goes last.
		n := len(spec.Bars)
		values := make(plotter.Values, n)
		labels := make([]string, n)
		for i, b := range spec.Bars {
			values[n-1-i] = b.Value
			labels[n-1-i] = b.Label
		}

		bars, err := plotter.NewBarChart(values, vg.Points(barWidth))
		if err != nil {
			return fmt.Errorf("build bar chart: %w", err)
		}
		bars.Horizontal = true
		bars.Color = spec.color()
		bars.LineStyle.Width = vg.Length(0)

		p.Add(bars)
		p.NominalY(labels...)
		p.X.Min = 0
	}

	wt, err := p.WriterTo(spec.width(), spec.height(), "png")
	if err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

func (s ChartSpec) color() color.Color {
	if s.Color != nil {
		return s.Color
	}
	return reviewColor
}

func (s ChartSpec) width() vg.Length {
	if s.Width > 0 {
		return s.Width
	}
	return 7.5 * vg.Inch
}

func (s ChartSpec) height() vg.Length {
	if s.Height > 0 {
		return s.Height
	}
	return 6 * vg.Inch
}
