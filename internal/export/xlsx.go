package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ecommerce-dashboard/internal/models"
)

const (
	SheetSummary = "Summary"
	SheetReviews = "Review Scores"
	SheetSales   = "Sales by Category"
	SheetDensity = "Geo Density"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// sheet writes rows into one worksheet and keeps the first error.
type sheet struct {
	f    *excelize.File
	name string
	row  int
	err  error
}

func (s *sheet) header(width float64, titles ...string) {
	s.append(toAny(titles)...)
	if s.err != nil {
		return
	}
	last, err := excelize.ColumnNumberToName(len(titles))
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetColWidth(s.name, "A", last, width)
}

func (s *sheet) append(values ...any) {
	if s.err != nil {
		return
	}
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetSheetRow(s.name, cell, &values)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Workbook writes d as an XLSX document with one sheet per dashboard
// panel. Empty panels produce a sheet holding only its header row.
func Workbook(w io.Writer, d *models.Dashboard) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetReviews, SheetSales, SheetDensity} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	sheets := []*sheet{
		summarySheet(f, d),
		reviewSheet(f, d.Reviews),
		salesSheet(f, d.Sales),
		densitySheet(f, d.Density),
	}
	for _, s := range sheets {
		if s.err != nil {
			return fmt.Errorf("write sheet %s: %w", s.name, s.err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func summarySheet(f *excelize.File, d *models.Dashboard) *sheet {
	s := &sheet{f: f, name: SheetSummary}
	s.header(24, "Metric", "Value")
	s.append("Start date", d.Range.Start.Format(models.DateLayout))
	s.append("End date", d.Range.End.Format(models.DateLayout))
	s.append("Total sales", d.Summary.TotalSales.InexactFloat64())
	s.append("Total sales label", d.Summary.SalesLabel)
	s.append("Total orders", d.Summary.TotalOrders)
	s.append("Total orders label", d.Summary.OrdersLabel)
	s.append("Rows", d.Summary.Records)
	return s
}

func reviewSheet(f *excelize.File, r models.ReviewRanking) *sheet {
	s := &sheet{f: f, name: SheetReviews}
	s.header(28, "Group", "Rank", "Category", "Mean score", "Reviews")
	for i, c := range r.Highest {
		s.append("Highest", i+1, c.Category, c.MeanScore, c.Reviews)
	}
	for i, c := range r.Lowest {
		s.append("Lowest", i+1, c.Category, c.MeanScore, c.Reviews)
	}
	return s
}

func salesSheet(f *excelize.File, sales []models.CategorySales) *sheet {
	s := &sheet{f: f, name: SheetSales}
	s.header(28, "Rank", "Category", "Orders")
	for i, c := range sales {
		s.append(i+1, c.Category, c.Orders)
	}
	return s
}

func densitySheet(f *excelize.File, bins []models.GeoBin) *sheet {
	s := &sheet{f: f, name: SheetDensity}
	s.header(16, "Latitude", "Longitude", "Orders")
	for _, b := range bins {
		s.append(b.Lat, b.Lng, b.Count)
	}
	return s
}
