package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"ecommerce-dashboard/internal/models"
)

const (
	ColApprovedAt   = "order_approved_at"
	ColCategory     = "product_category_name_english"
	ColOrderItemID  = "order_item_id"
	ColPaymentValue = "payment_value"
	ColReviewScore  = "review_score"
	ColCustomerLat  = "customer_lat"
	ColCustomerLng  = "customer_lng"

	batchSize      = 10000
	defaultWorkers = 8
)

var requiredColumns = []string{
	ColApprovedAt,
	ColCategory,
	ColOrderItemID,
	ColPaymentValue,
	ColReviewScore,
	ColCustomerLat,
	ColCustomerLng,
}

// missingValues mirrors the NA markers of common dataframe readers.
var missingValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#NA": {}, "<NA>": {}, "N/A": {}, "n/a": {},
	"NA": {}, "NULL": {}, "null": {}, "NaN": {}, "nan": {}, "-nan": {}, "None": {},
}

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyDataset  = errors.New("dataset has no rows")
)

// ParseError reports the first cell that could not be coerced.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: column %s: value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type Options struct {
	Workers int
}

type columnIndex map[string]int

type rawRow struct {
	line   int
	fields []string
}

// Load reads the joined orders file at path. Any unreadable row fails the
// whole load.
func Load(ctx context.Context, path string, opts Options) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	return Read(ctx, file, opts)
}

func Read(ctx context.Context, r io.Reader, opts Options) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrEmptyDataset
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []rawRow
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, rawRow{line: line, fields: fields})
	}

	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}

	records, err := parseRows(ctx, rows, cols, opts.workers())
	if err != nil {
		return nil, err
	}

	return NewTable(records), nil
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return defaultWorkers
}

func indexColumns(header []string) (columnIndex, error) {
	cols := make(columnIndex, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

// parseRows converts rows in batches on a bounded pool. Each batch writes
// only its own slice range, so the result keeps file order.
func parseRows(ctx context.Context, rows []rawRow, cols columnIndex, workers int) ([]models.OrderRecord, error) {
	records := make([]models.OrderRecord, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for lo := 0; lo < len(rows); lo += batchSize {
		hi := min(lo+batchSize, len(rows))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				rec, err := parseRecord(rows[i], cols)
				if err != nil {
					return err
				}
				records[i] = rec
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func parseRecord(row rawRow, cols columnIndex) (models.OrderRecord, error) {
	cell := func(name string) string {
		v := strings.TrimSpace(row.fields[cols[name]])
		if _, ok := missingValues[v]; ok {
			return ""
		}
		return v
	}
	fail := func(name string, err error) error {
		return &ParseError{Line: row.line, Column: name, Value: row.fields[cols[name]], Err: err}
	}

	var rec models.OrderRecord

	approvedAt, err := ParseTimestamp(cell(ColApprovedAt))
	if err != nil {
		return rec, fail(ColApprovedAt, err)
	}
	rec.ApprovedAt = approvedAt
	rec.Category = cell(ColCategory)

	if v := cell(ColOrderItemID); v != "" {
		n, err := parseCount(v)
		if err != nil {
			return rec, fail(ColOrderItemID, err)
		}
		rec.OrderItemID = n
		rec.HasOrderItem = true
	}

	if v := cell(ColPaymentValue); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return rec, fail(ColPaymentValue, err)
		}
		rec.PaymentValue = d
	}

	if v := cell(ColReviewScore); v != "" {
		score, err := parseFloat(v)
		if err != nil {
			return rec, fail(ColReviewScore, err)
		}
		rec.ReviewScore = score
		rec.HasReview = true
	}

	latCell, lngCell := cell(ColCustomerLat), cell(ColCustomerLng)
	if latCell != "" && lngCell != "" {
		lat, err := parseFloat(latCell)
		if err != nil {
			return rec, fail(ColCustomerLat, err)
		}
		lng, err := parseFloat(lngCell)
		if err != nil {
			return rec, fail(ColCustomerLng, err)
		}
		rec.Lat, rec.Lng = lat, lng
		rec.HasLocation = true
	}

	return rec, nil
}

func parseFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return f, nil
}

// parseCount accepts integers and integral floats such as "2.0".
func parseCount(v string) (int64, error) {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	f, err := parseFloat(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer")
	}
	return int64(f), nil
}
