package dataset

import (
	"slices"
	"sort"
	"time"

	"ecommerce-dashboard/internal/models"
)

// Table is an immutable, approval-ordered set of order records. Filtered
// tables share storage with their source; neither is ever written after
// construction.
type Table struct {
	records []models.OrderRecord
}

// NewTable copies records and sorts them by approval time, keeping file
// order among equal timestamps.
func NewTable(records []models.OrderRecord) *Table {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.OrderRecord) int {
		return a.ApprovedAt.Compare(b.ApprovedAt)
	})
	return &Table{records: sorted}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns the rows in approval order. Callers must not modify them.
func (t *Table) Records() []models.OrderRecord {
	if t == nil {
		return nil
	}
	return t.records[:len(t.records):len(t.records)]
}

// Bounds returns the calendar dates of the earliest and latest approval.
// ok is false for an empty table.
func (t *Table) Bounds() (r models.DateRange, ok bool) {
	if t.Len() == 0 {
		return models.DateRange{}, false
	}
	return models.NewDateRange(t.records[0].ApprovedAt, t.records[len(t.records)-1].ApprovedAt), true
}

// Filter keeps rows approved on a date within r, both ends inclusive.
// Inverted or out-of-domain ranges produce an empty table.
func (t *Table) Filter(r models.DateRange) *Table {
	if t.Len() == 0 || r.Inverted() {
		return &Table{records: []models.OrderRecord{}}
	}
	r = models.NewDateRange(r.Start, r.End)
	endExclusive := r.End.Add(24 * time.Hour)

	lo := sort.Search(len(t.records), func(i int) bool {
		return !t.records[i].ApprovedAt.Before(r.Start)
	})
	hi := sort.Search(len(t.records), func(i int) bool {
		return !t.records[i].ApprovedAt.Before(endExclusive)
	})
	if hi < lo {
		hi = lo
	}
	return &Table{records: t.records[lo:hi:hi]}
}
